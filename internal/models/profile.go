package models

// DisplayProfile describes the physical display the dashboard targets. The
// publisher hands these values to the external writer as scalar parameters.
type DisplayProfile struct {
	WidthPx              int `json:"width_px" mapstructure:"width_px"`
	HeightPx             int `json:"height_px" mapstructure:"height_px"`
	SafeTopPx            int `json:"safe_top_px" mapstructure:"safe_top_px"`
	SafeBottomPx         int `json:"safe_bottom_px" mapstructure:"safe_bottom_px"`
	SafeSidePx           int `json:"safe_side_px" mapstructure:"safe_side_px"`
	LayoutSafetyMarginPx int `json:"layout_safety_margin_px" mapstructure:"layout_safety_margin_px"`
}

// DisplayProfilePatch is a partial display profile update.
type DisplayProfilePatch struct {
	WidthPx              *int `json:"width_px,omitempty"`
	HeightPx             *int `json:"height_px,omitempty"`
	SafeTopPx            *int `json:"safe_top_px,omitempty"`
	SafeBottomPx         *int `json:"safe_bottom_px,omitempty"`
	SafeSidePx           *int `json:"safe_side_px,omitempty"`
	LayoutSafetyMarginPx *int `json:"layout_safety_margin_px,omitempty"`
}

// Merge applies a patch over the profile and clamps the result to sane
// minimums (width >= 320, height >= 240, everything else >= 0).
func (p DisplayProfile) Merge(patch DisplayProfilePatch) DisplayProfile {
	out := p
	if patch.WidthPx != nil {
		out.WidthPx = *patch.WidthPx
	}
	if patch.HeightPx != nil {
		out.HeightPx = *patch.HeightPx
	}
	if patch.SafeTopPx != nil {
		out.SafeTopPx = *patch.SafeTopPx
	}
	if patch.SafeBottomPx != nil {
		out.SafeBottomPx = *patch.SafeBottomPx
	}
	if patch.SafeSidePx != nil {
		out.SafeSidePx = *patch.SafeSidePx
	}
	if patch.LayoutSafetyMarginPx != nil {
		out.LayoutSafetyMarginPx = *patch.LayoutSafetyMarginPx
	}
	out.Clamp()
	return out
}

// Clamp enforces minimum values in place.
func (p *DisplayProfile) Clamp() {
	if p.WidthPx < 320 {
		p.WidthPx = 320
	}
	if p.HeightPx < 240 {
		p.HeightPx = 240
	}
	if p.SafeTopPx < 0 {
		p.SafeTopPx = 0
	}
	if p.SafeBottomPx < 0 {
		p.SafeBottomPx = 0
	}
	if p.SafeSidePx < 0 {
		p.SafeSidePx = 0
	}
	if p.LayoutSafetyMarginPx < 0 {
		p.LayoutSafetyMarginPx = 0
	}
}
