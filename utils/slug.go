package utils

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
)

func init() {
	slug.MaxLength = 190
}

func Slugify(s string) string {
	return slug.Make(s)
}

// UniqueSlug returns base, or base-2, base-3... for the first candidate exists reports as free.
func UniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	if base == "" {
		base = "post"
	}
	candidate := base
	for n := 2; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
