package generator

// Template describes the structure an article is generated against.
type Template struct {
	Key         string
	Name        string
	Description string
	Sections    []string
	MinWords    int
	FAQCount    int
}

// DefaultTemplateType is used when a campaign or request does not name one.
const DefaultTemplateType = "ecommerce_general"

var templates = map[string]Template{
	"cbd_wellness": {
		Key:         "cbd_wellness",
		Name:        "CBD & Wellness",
		Description: "Optimized for CBD and wellness products",
		Sections: []string{
			"Introduction",
			"Benefits & Science",
			"Usage Guidelines",
			"Safety Information",
			"Product Recommendations",
			"Comprehensive FAQ",
			"Conclusion",
		},
		MinWords: 2500,
		FAQCount: 18,
	},
	"ecommerce_general": {
		Key:         "ecommerce_general",
		Name:        "E-commerce General",
		Description: "General product-focused content",
		Sections: []string{
			"Product Overview",
			"Key Features",
			"Benefits",
			"How to Choose",
			"Product Comparisons",
			"FAQ Section",
			"Conclusion",
		},
		MinWords: 2000,
		FAQCount: 15,
	},
	"service_business": {
		Key:         "service_business",
		Name:        "Service Business",
		Description: "Service-oriented content",
		Sections: []string{
			"Service Overview",
			"Why Choose Us",
			"Process & Methodology",
			"Case Studies",
			"Pricing Guide",
			"FAQ Section",
			"Get Started",
		},
		MinWords: 1800,
		FAQCount: 12,
	},
}

// TemplateByType returns the template for the given type, falling back to
// the default when the type is unknown or empty.
func TemplateByType(templateType string) Template {
	if t, ok := templates[templateType]; ok {
		return t
	}
	return templates[DefaultTemplateType]
}

// Templates returns all registered templates.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, key := range []string{"cbd_wellness", "ecommerce_general", "service_business"} {
		out = append(out, templates[key])
	}
	return out
}

// IsValidTemplateType reports whether the given type is registered.
func IsValidTemplateType(templateType string) bool {
	_, ok := templates[templateType]
	return ok
}
