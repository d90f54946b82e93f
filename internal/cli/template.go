package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhytabest/plashboard/internal/models"
)

var (
	copyName     string
	copyActivate bool
	createFile   string
	updateFile   string
)

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateUpdateCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateCopyCmd)
	templateCmd.AddCommand(templateActivateCmd)

	templateCreateCmd.Flags().StringVarP(&createFile, "file", "f", "", "template JSON file (- for stdin)")
	_ = templateCreateCmd.MarkFlagRequired("file")
	templateUpdateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "template JSON file (- for stdin)")
	_ = templateUpdateCmd.MarkFlagRequired("file")

	templateCopyCmd.Flags().StringVar(&copyName, "name", "", "name for the copy (default \"<source name> Copy\")")
	templateCopyCmd.Flags().BoolVar(&copyActivate, "activate", false, "activate the copy")
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage dashboard templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.TemplateList())
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.TemplateGet(args[0]))
	},
}

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a template from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := readTemplateFile(createFile)
		if err != nil {
			return err
		}
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.TemplateCreate(cmd.Context(), tpl))
	},
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace an existing template from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := readTemplateFile(updateFile)
		if err != nil {
			return err
		}
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.TemplateUpdate(cmd.Context(), tpl))
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.TemplateDelete(args[0]))
	},
}

var templateCopyCmd = &cobra.Command{
	Use:   "copy <src-id> <dst-id>",
	Short: "Copy a template under a new id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.TemplateCopy(cmd.Context(), args[0], args[1], copyName, copyActivate))
	},
}

var templateActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make a template the live dashboard source",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newService()
		if err != nil {
			return err
		}
		return writeResult(svc.TemplateActivate(args[0]))
	},
	Args: cobra.ExactArgs(1),
}

func readTemplateFile(path string) (*models.Template, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = os.ReadFile("/dev/stdin")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	tpl := &models.Template{}
	if err := json.Unmarshal(raw, tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template JSON: %w", err)
	}
	return tpl, nil
}
