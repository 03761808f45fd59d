// Package audit supplies accessibility findings and suggested fixes.
// Findings are not computed from document content; they come from a fixed
// catalog, standing in for an external scanning service.
package audit

import "github.com/oskarb/docmend/internal/models"

// Finding categories. Suggestions are keyed by category: the WCAG clause is
// not unique across findings (three catalog entries share 1.3.1), so keying
// by clause would silently collapse them.
const (
	CategoryTitleContrast    = "title_contrast"
	CategoryHeadingStructure = "heading_structure"
	CategoryHeadingHierarchy = "heading_hierarchy"
	CategoryBodyContrast     = "body_contrast"
	CategoryAltText          = "missing_alt_text"
	CategoryTableHeaders     = "table_headers"
	CategoryLinkText         = "link_text"
	CategoryFontSize         = "font_size"
)

// catalogEntry is one known accessibility issue with its canned fix.
type catalogEntry struct {
	category        string
	clause          string
	description     string
	wcagLevel       string
	originalContent string
	elementPath     string
	suggestion      models.Suggestion
}

// catalog mirrors the audit service's fixture scan: eight findings against
// the sample document, addressed by WordprocessingML positional paths.
var catalog = []catalogEntry{
	{
		category:        CategoryTitleContrast,
		clause:          "WCAG 2.1 AA 1.4.3",
		description:     "Insufficient color contrast in document title",
		wcagLevel:       "AA",
		originalContent: "Sample Document with Accessibility Issues",
		elementPath:     "//w:p[1]/w:r[1]",
		suggestion: models.Suggestion{
			SuggestedText: "Change text color from #C8C8C8 to #333333 for better contrast",
			Confidence:    0.95,
			FixType:       "color_change",
			OldValue:      "#C8C8C8",
			NewValue:      "#333333",
			ElementPath:   "//w:p[1]/w:r[1]",
		},
	},
	{
		category:        CategoryHeadingStructure,
		clause:          "WCAG 2.1 A 1.3.1",
		description:     "Missing heading structure - paragraph should be a heading",
		wcagLevel:       "A",
		originalContent: "This is a paragraph that should be a heading.",
		elementPath:     "//w:p[2]",
		suggestion: models.Suggestion{
			SuggestedText: "Convert paragraph to Heading 1 for proper document structure",
			Confidence:    0.88,
			FixType:       "heading_structure_change",
			OldValue:      "paragraph",
			NewValue:      "heading",
			ElementPath:   "//w:p[2]",
		},
	},
	{
		category:        CategoryHeadingHierarchy,
		clause:          "WCAG 2.1 A 1.3.1",
		description:     "Improper heading hierarchy - h3 without preceding h2",
		wcagLevel:       "A",
		originalContent: "Subsection",
		elementPath:     "//w:p[3]",
		suggestion: models.Suggestion{
			SuggestedText: "Change heading level from h3 to h2 to maintain proper hierarchy",
			Confidence:    0.92,
			FixType:       "heading_level_change",
			OldValue:      "h3",
			NewValue:      "h2",
			ElementPath:   "//w:p[3]",
		},
	},
	{
		category:        CategoryBodyContrast,
		clause:          "WCAG 2.1 AA 1.4.3",
		description:     "Insufficient color contrast in body text",
		wcagLevel:       "AA",
		originalContent: "This text has insufficient color contrast.",
		elementPath:     "//w:p[4]/w:r[1]",
		suggestion: models.Suggestion{
			SuggestedText: "Change text color from #B4B4B4 to #333333 for better contrast",
			Confidence:    0.95,
			FixType:       "color_change",
			OldValue:      "#B4B4B4",
			NewValue:      "#333333",
			ElementPath:   "//w:p[4]/w:r[1]",
		},
	},
	{
		category:        CategoryAltText,
		clause:          "WCAG 2.1 A 1.1.1",
		description:     "Missing alternative text for referenced image",
		wcagLevel:       "A",
		originalContent: "Please refer to the chart below for more information.",
		elementPath:     "//w:p[5]",
		suggestion: models.Suggestion{
			SuggestedText: "Add \"Annual Sales Chart\" as alternative text for the referenced image",
			Confidence:    0.85,
			FixType:       "alt_text_addition",
			NewValue:      "Annual Sales Chart",
			ElementPath:   "//w:p[5]/w:r[1]/w:t",
		},
	},
	{
		category:        CategoryTableHeaders,
		clause:          "WCAG 2.1 A 1.3.1",
		description:     "Table missing header row",
		wcagLevel:       "A",
		originalContent: "Data table without headers",
		elementPath:     "//w:tbl[1]",
		suggestion: models.Suggestion{
			SuggestedText: "Add header row with \"Column 1, Column 2, Column 3\" to the table",
			Confidence:    0.90,
			FixType:       "table_header_addition",
			NewValue:      "Column 1, Column 2, Column 3",
			ElementPath:   "//w:tbl[1]/w:tr[1]/w:tc[1]",
		},
	},
	{
		category:        CategoryLinkText,
		clause:          "WCAG 2.1 A 2.4.4",
		description:     "Link text not descriptive - \"here\" is not meaningful",
		wcagLevel:       "A",
		originalContent: "here",
		elementPath:     "//w:p[6]/w:r[2]",
		suggestion: models.Suggestion{
			SuggestedText: "Change link text from \"here\" to \"download the report\" for better description",
			Confidence:    0.87,
			FixType:       "link_text_change",
			OldValue:      "here",
			NewValue:      "download the report",
			ElementPath:   "//w:p[6]/w:r[2]/w:t",
		},
	},
	{
		category:        CategoryFontSize,
		clause:          "WCAG 2.1 AA 1.4.4",
		description:     "Text too small to read without zooming",
		wcagLevel:       "AA",
		originalContent: "This text is too small to read easily.",
		elementPath:     "//w:p[7]/w:r[1]",
		suggestion: models.Suggestion{
			SuggestedText: "Increase font size from 6pt to 12pt for better readability",
			Confidence:    0.93,
			FixType:       "font_size_change",
			OldValue:      "6pt",
			NewValue:      "12pt",
			ElementPath:   "//w:p[7]/w:r[1]",
		},
	},
}

// fallbackSuggestion covers findings whose category is not in the catalog.
var fallbackSuggestion = models.Suggestion{
	SuggestedText: "Manual review required for this issue type",
	Confidence:    0.5,
	FixType:       "manual_review",
}
