package normalization

import (
	"fmt"
	"strings"

	"github.com/yungbote/worldkernel-backend/internal/domain/kernel"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
)

// KernelInput is the raw form submission. TagsInput is the comma separated field.
type KernelInput struct {
	Title       string
	Description string
	TagsInput   string
	License     string
}

// ParseTags splits on commas, trims, lowercases, drops empties and keeps the first ten.
// Duplicates are preserved.
func ParseTags(input string) kernel.Tags {
	out := kernel.Tags{}
	for _, part := range strings.Split(input, ",") {
		tag := ParseInputString(part)
		if tag == "" {
			continue
		}
		out = append(out, tag)
		if len(out) == kernel.MaxTags {
			break
		}
	}
	return out
}

// ValidateKernelForm applies the form rules in order and returns the first failure.
// Title and description are kept as submitted.
func ValidateKernelForm(in KernelInput) (kernel.Fields, error) {
	if RuneLen(in.Title) > kernel.MaxTitleLen {
		return kernel.Fields{}, pkgerrors.NewValidation("title", fmt.Sprintf("Title must be %d characters or less", kernel.MaxTitleLen))
	}
	if RuneLen(in.Description) > kernel.MaxDescriptionLen {
		return kernel.Fields{}, pkgerrors.NewValidation("description", fmt.Sprintf("Description must be %d characters or less", kernel.MaxDescriptionLen))
	}

	tags := ParseTags(in.TagsInput)
	for _, tag := range tags {
		if RuneLen(tag) > kernel.MaxTagLen {
			return kernel.Fields{}, pkgerrors.NewValidation("tags", fmt.Sprintf("Tag %q is too long (max %d characters)", tag, kernel.MaxTagLen))
		}
	}

	license, ok := kernel.ParseLicense(in.License)
	if !ok {
		return kernel.Fields{}, pkgerrors.NewValidation("license", fmt.Sprintf("License %q must be one of open, attribution, permission", strings.TrimSpace(in.License)))
	}

	// Required fields are checked last so the length messages keep precedence.
	if strings.TrimSpace(in.Title) == "" {
		return kernel.Fields{}, pkgerrors.NewValidation("title", "Title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return kernel.Fields{}, pkgerrors.NewValidation("description", "Description is required")
	}

	return kernel.Fields{
		Title:       in.Title,
		Description: in.Description,
		Tags:        tags,
		License:     license,
	}, nil
}
