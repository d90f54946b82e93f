package cli

import (
	"github.com/spf13/cobra"

	"github.com/jhytabest/plashboard/internal/models"
)

var (
	profileWidth        int
	profileHeight       int
	profileSafeTop      int
	profileSafeBottom   int
	profileSafeSide     int
	profileSafetyMargin int
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd)

	flags := profileSetCmd.Flags()
	flags.IntVar(&profileWidth, "width", -1, "display width in pixels")
	flags.IntVar(&profileHeight, "height", -1, "display height in pixels")
	flags.IntVar(&profileSafeTop, "safe-top", -1, "top safe area in pixels")
	flags.IntVar(&profileSafeBottom, "safe-bottom", -1, "bottom safe area in pixels")
	flags.IntVar(&profileSafeSide, "safe-side", -1, "side safe area in pixels")
	flags.IntVar(&profileSafetyMargin, "safety-margin", -1, "layout safety margin in pixels")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the display profile",
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Apply a partial display-profile update",
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := models.DisplayProfilePatch{}
		set := func(flag string, value int, target **int) {
			if cmd.Flags().Changed(flag) {
				v := value
				*target = &v
			}
		}
		set("width", profileWidth, &patch.WidthPx)
		set("height", profileHeight, &patch.HeightPx)
		set("safe-top", profileSafeTop, &patch.SafeTopPx)
		set("safe-bottom", profileSafeBottom, &patch.SafeBottomPx)
		set("safe-side", profileSafeSide, &patch.SafeSidePx)
		set("safety-margin", profileSafetyMargin, &patch.LayoutSafetyMarginPx)

		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.DisplayProfileSet(patch))
	},
}
