package prompt

import "fmt"

// StyleOptions - slider-driven styling for the logo edit flow. Values are
// 0-100 percentages bucketed into low/medium/high wording.
type StyleOptions struct {
	Lighting         int
	Depth            int
	Gloss            int
	BorderRadius     int
	BackgroundStyle  string // neutral, gradient, glass
	ColorEnhancement int
}

// DefaultStyleOptions - the product's default slider positions
func DefaultStyleOptions() StyleOptions {
	return StyleOptions{
		Lighting:         75,
		Depth:            60,
		Gloss:            80,
		BorderRadius:     85,
		BackgroundStyle:  "neutral",
		ColorEnhancement: 50,
	}
}

var backgroundStyles = map[string]string{
	"neutral":  "on a neutral cream beige background with soft shadows",
	"gradient": "with a subtle gradient background transitioning from light to slightly darker neutral tones",
	"glass":    "with a translucent glassmorphism background with subtle frosted glass effects",
}

var lightingTerms = map[string]string{
	"low":    "subtle ambient lighting",
	"medium": "soft directional lighting from top-left",
	"high":   "dramatic studio lighting with pronounced highlights",
}

var depthTerms = map[string]string{
	"low":    "slight embossed effect",
	"medium": "moderate 3D depth with beveled edges",
	"high":   "pronounced 3D extrusion with deep shadows",
}

var glossTerms = map[string]string{
	"low":    "matte finish",
	"medium": "semi-gloss surface",
	"high":   "high-gloss reflective surface",
}

var roundnessTerms = map[string]string{
	"low":    "slightly rounded corners",
	"medium": "moderately rounded corners",
	"high":   "very rounded iOS-style corners",
}

func level(value, lowCut, highCut int) string {
	switch {
	case value < lowCut:
		return "low"
	case value < highCut:
		return "medium"
	default:
		return "high"
	}
}

// BuildLogoPrompt - the slider-parameterized transformation prompt used when
// a source logo image accompanies the request.
func BuildLogoPrompt(o StyleOptions) string {
	background, ok := backgroundStyles[o.BackgroundStyle]
	if !ok {
		background = backgroundStyles["neutral"]
	}

	enhancement := ""
	if o.ColorEnhancement > 60 {
		enhancement = "Enhance colors with modern gradients while preserving logo identity. "
	}

	return fmt.Sprintf(`Transform this logo into a modern 3D app icon with %s in a rounded square container.
Apply %s and %s finish.
Use %s %s.
%sStyle should be professional SaaS app icon, reminiscent of iOS Big Sur design language.
Ultra high resolution, 1024x1024 pixels, perfect for app store use.`,
		roundnessTerms[level(o.BorderRadius, 35, 65)],
		depthTerms[level(o.Depth, 35, 65)],
		glossTerms[level(o.Gloss, 35, 65)],
		lightingTerms[level(o.Lighting, 40, 70)],
		background,
		enhancement)
}
