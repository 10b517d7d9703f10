package normalization

import (
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/worldkernel-backend/internal/domain/kernel"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
)

func TestValidateKernelFormTitleBound(t *testing.T) {
	t.Parallel()

	title := strings.Repeat("x", 200)
	f, err := ValidateKernelForm(KernelInput{Title: title, Description: "d"})
	if err != nil {
		t.Fatalf("200 chars: want ok got=%v", err)
	}
	if f.Title != title {
		t.Fatalf("title: want unchanged")
	}

	_, err = ValidateKernelForm(KernelInput{Title: title + "x", Description: "d"})
	ve, ok := pkgerrors.AsValidation(err)
	if !ok {
		t.Fatalf("201 chars: want ValidationError got=%v", err)
	}
	if ve.Message != "Title must be 200 characters or less" {
		t.Fatalf("message: got=%q", ve.Message)
	}
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument in chain")
	}
}

func TestValidateKernelFormCountsCodePoints(t *testing.T) {
	t.Parallel()

	// 200 multi-byte runes is still within bounds.
	if _, err := ValidateKernelForm(KernelInput{Title: strings.Repeat("é", 200), Description: "d"}); err != nil {
		t.Fatalf("200 runes: want ok got=%v", err)
	}
}

func TestValidateKernelFormDescriptionBound(t *testing.T) {
	t.Parallel()

	if _, err := ValidateKernelForm(KernelInput{Title: "t", Description: strings.Repeat("d", 5000)}); err != nil {
		t.Fatalf("5000: want ok got=%v", err)
	}
	_, err := ValidateKernelForm(KernelInput{Title: "t", Description: strings.Repeat("d", 5001)})
	ve, ok := pkgerrors.AsValidation(err)
	if !ok || ve.Message != "Description must be 5000 characters or less" {
		t.Fatalf("5001: got=%v", err)
	}
}

func TestValidateKernelFormOrder(t *testing.T) {
	t.Parallel()

	_, err := ValidateKernelForm(KernelInput{
		Title:       strings.Repeat("x", 201),
		Description: strings.Repeat("d", 5001),
		TagsInput:   strings.Repeat("t", 40),
	})
	ve, ok := pkgerrors.AsValidation(err)
	if !ok || ve.Field != "title" {
		t.Fatalf("want title error first got=%v", err)
	}
}

func TestParseTags(t *testing.T) {
	t.Parallel()

	got := ParseTags("Fantasy, magic-system, , Fantasy")
	want := []string{"fantasy", "magic-system", "fantasy"}
	if len(got) != len(want) {
		t.Fatalf("len: want=%d got=%d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tag[%d]: want=%q got=%q", i, want[i], got[i])
		}
	}

	if got := ParseTags(""); got == nil || len(got) != 0 {
		t.Fatalf("empty: want empty non-nil got=%#v", got)
	}

	many := ParseTags("a,b,c,d,e,f,g,h,i,j,k,l")
	if len(many) != kernel.MaxTags || many[9] != "j" {
		t.Fatalf("truncate: got=%v", many)
	}
}

func TestValidateKernelFormTags(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 31)
	_, err := ValidateKernelForm(KernelInput{Title: "t", Description: "d", TagsInput: "ok, " + strings.ToUpper(long)})
	ve, ok := pkgerrors.AsValidation(err)
	if !ok {
		t.Fatalf("want ValidationError got=%v", err)
	}
	if ve.Message != `Tag "`+long+`" is too long (max 30 characters)` {
		t.Fatalf("message: got=%q", ve.Message)
	}

	// An overlong tag past the tenth is dropped before the length check.
	input := "a,b,c,d,e,f,g,h,i,j," + long
	f, err := ValidateKernelForm(KernelInput{Title: "t", Description: "d", TagsInput: input})
	if err != nil {
		t.Fatalf("eleventh tag: want ok got=%v", err)
	}
	if len(f.Tags) != 10 {
		t.Fatalf("tags: want=10 got=%d", len(f.Tags))
	}
}

func TestValidateKernelFormLicense(t *testing.T) {
	t.Parallel()

	f, err := ValidateKernelForm(KernelInput{Title: "t", Description: "d"})
	if err != nil || f.License != kernel.LicenseOpen {
		t.Fatalf("default license: got=%q err=%v", f.License, err)
	}
	f, err = ValidateKernelForm(KernelInput{Title: "t", Description: "d", License: "permission"})
	if err != nil || f.License != kernel.LicensePermission {
		t.Fatalf("permission: got=%q err=%v", f.License, err)
	}
	_, err = ValidateKernelForm(KernelInput{Title: "t", Description: "d", License: "cc0"})
	if ve, ok := pkgerrors.AsValidation(err); !ok || ve.Field != "license" {
		t.Fatalf("unknown license: got=%v", err)
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	if got := Excerpt("  short  ", 150); got != "  short  " {
		t.Fatalf("short text is returned as is: got=%q", got)
	}
	edge := " " + strings.Repeat("w", 148) + " "
	if got := Excerpt(edge, 150); got != edge {
		t.Fatalf("150 chars with padding: got=%q", got)
	}
	long := strings.Repeat("w", 151)
	if got := Excerpt(long, 150); got != strings.Repeat("w", 150)+"..." {
		t.Fatalf("long: got len=%d", len(got))
	}
	cut := strings.Repeat("w", 149) + "  tail"
	if got := Excerpt(cut, 150); got != strings.Repeat("w", 149)+"..." {
		t.Fatalf("cut slice is trimmed: got=%q", got)
	}
}

func TestValidateKernelFormRequired(t *testing.T) {
	t.Parallel()

	_, err := ValidateKernelForm(KernelInput{Title: "   ", Description: "d"})
	if ve, ok := pkgerrors.AsValidation(err); !ok || ve.Message != "Title is required" {
		t.Fatalf("blank title: got=%v", err)
	}
	_, err = ValidateKernelForm(KernelInput{Title: "t", Description: "\n"})
	if ve, ok := pkgerrors.AsValidation(err); !ok || ve.Message != "Description is required" {
		t.Fatalf("blank description: got=%v", err)
	}
}
