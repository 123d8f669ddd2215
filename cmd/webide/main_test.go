package main

import (
	"reflect"
	"testing"
)

func TestRewriteDeepLinkArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"webide"},
			want: []string{"webide"},
		},
		{
			name: "deep link first token",
			in:   []string{"webide", "project=Demo"},
			want: []string{"webide", "edit", "Demo"},
		},
		{
			name: "deep link after value flag",
			in:   []string{"webide", "--storage", "./tmp-storage", "project=Demo"},
			want: []string{"webide", "--storage", "./tmp-storage", "edit", "Demo"},
		},
		{
			name: "deep link after equals flag",
			in:   []string{"webide", "--storage=./tmp-storage", "project=Demo"},
			want: []string{"webide", "--storage=./tmp-storage", "edit", "Demo"},
		},
		{
			name: "deep link after bool flag",
			in:   []string{"webide", "--pretty", "project=Demo"},
			want: []string{"webide", "--pretty", "edit", "Demo"},
		},
		{
			name: "deep link after double dash",
			in:   []string{"webide", "--", "project=My App"},
			want: []string{"webide", "--", "edit", "My App"},
		},
		{
			name: "empty project name is left alone",
			in:   []string{"webide", "project="},
			want: []string{"webide", "project="},
		},
		{
			name: "subcommand untouched",
			in:   []string{"webide", "projects", "list"},
			want: []string{"webide", "projects", "list"},
		},
		{
			name: "deep link later in args untouched",
			in:   []string{"webide", "config", "get", "project=Demo"},
			want: []string{"webide", "config", "get", "project=Demo"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDeepLinkArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
