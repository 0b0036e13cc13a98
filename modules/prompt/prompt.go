package prompt

import "fmt"

// JellySystemPrompt - the canonical Jelly 3D icon specification. The upstream
// model is sensitive to exact wording, so this text is contractual: every
// generated prompt contains it verbatim.
const JellySystemPrompt = `You are a specialized AI that creates Jelly 3D Icons with the following specifications:

{
  "style": "Jelly 3D Icon",
  "object": "User-uploaded logo or emoji (e.g. Netflix N, Ghost, Spotify icon, etc.)",
  "base": {
    "shape": "Rounded square",
    "material": "Soft translucent jelly-like material",
    "color": "A strong contrasting color to icon (e.g. purple, green, blue)",
    "lighting": "Inner glow and soft ambient shadows that gently fade outward"
  },
  "icon": {
    "material": "Jelly/glassy translucent look, softly glowing from within",
    "color": "Brighter tone or brand color, always with a jelly-glass texture",
    "depth": "3D extruded with rounded edges and subtle bottom shadow",
    "placement": "Centered with even padding inside base"
  },
  "render": {
    "camera": "Front orthographic view with centered framing",
    "lighting": "Studio-quality lighting with soft top-left highlight and directional drop shadow underneath icon",
    "shadow": {
      "style": "Soft diffused base shadow with slight blur",
      "position": "Directly under icon, slightly offset down",
      "opacity": 0.15,
      "spread": "Medium, matching other icons in set"
    },
    "background": "Soft warm grey or pastel cream for consistency",
    "dimensions": "1:1 square ratio, minimum 1024x1024",
    "file_format": "PNG"
  },
  "style_notes": "Ensure consistent lighting and shadow softness across the set. Shadows should appear slightly beneath and behind the icon with soft blur, matching the Spotify, Camera, and Weather icon samples exactly. Avoid flat or harsh shadows. Emphasize clean separation between icon and base through shadow and depth."
}

Create jelly 3D icons that are translucent, soft, with inner glow effects and perfect studio lighting.

A 3D-rendered icon showcases the uploaded logo, placed at the center of a soft, jelly-like button with rounded corners. The icon appears raised, glowing subtly with a soft internal halo effect. The button base features a contrasting translucent color, while the logo adopts a brighter tone with a jelly-glass texture. The background is a smooth gradient of pastel or warm cream, with soft ambient lighting and diffused shadows enhancing the overall depth and clarity.`

// Default parameter values substituted when the caller provides no palette
const (
	DefaultBaseColor     = "vibrant purple with translucent jelly material"
	DefaultIconColor     = "bright contrasting color with glass-like finish"
	DefaultGlowIntensity = 70
	DefaultShadowOpacity = 15
)

// Options - optional parameterization of the enhanced prompt.
// Zero-valued fields fall back to the defaults above.
type Options struct {
	BaseColor     string
	IconColor     string
	GlowIntensity int
	ShadowOpacity int
}

// BuildEnhancedPrompt - compose the final upstream prompt for a logo
// description. Pure function: same inputs always yield byte-identical output,
// and the output is always a superstring of JellySystemPrompt.
func BuildEnhancedPrompt(description string, opts *Options) string {
	baseColor := DefaultBaseColor
	iconColor := DefaultIconColor
	glow := DefaultGlowIntensity
	shadow := DefaultShadowOpacity

	if opts != nil {
		if opts.BaseColor != "" {
			baseColor = opts.BaseColor
		}
		if opts.IconColor != "" {
			iconColor = opts.IconColor
		}
		if opts.GlowIntensity > 0 {
			glow = opts.GlowIntensity
		}
		if opts.ShadowOpacity > 0 {
			shadow = opts.ShadowOpacity
		}
	}

	return fmt.Sprintf(`%s

Create a jelly 3D icon for: %s

Additional specifications:
- Base color: %s
- Icon color: %s
- Glow intensity: %d%% inner glow
- Shadow opacity: %d%% soft diffused shadow
- Material: Translucent jelly/glass hybrid with soft inner lighting
- Style: Modern iOS Big Sur aesthetic with enhanced jelly properties
- Quality: Ultra high resolution, perfect for app store use

Render as a perfect 1024x1024 jelly 3D icon with studio lighting and soft shadows.`,
		JellySystemPrompt, description, baseColor, iconColor, glow, shadow)
}
