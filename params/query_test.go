package params_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mikhus/wsgikit/params"
)

func TestParseQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "simple pairs",
			raw:  "foo=1&bar=2",
			want: map[string]any{"foo": "1", "bar": "2"},
		},
		{
			name: "nested bracket notation",
			raw:  "foo[][]=1&foo[1][]=1&foo[1][]=1",
			want: map[string]any{
				"foo": map[string]any{
					"0": map[string]any{"0": "1"},
					"1": map[string]any{"0": "1", "1": "1"},
				},
			},
		},
		{
			name: "empty input",
			raw:  "",
			want: map[string]any{},
		},
		{
			name: "empty tokens between separators skipped",
			raw:  "a=1&&b=2&",
			want: map[string]any{"a": "1", "b": "2"},
		},
		{
			name: "missing equals yields empty value",
			raw:  "flag&x=1",
			want: map[string]any{"flag": "", "x": "1"},
		},
		{
			name: "value may contain equals",
			raw:  "expr=a=b",
			want: map[string]any{"expr": "a=b"},
		},
		{
			name: "plus and percent decoding",
			raw:  "name=John+Doe&city=Z%C3%BCrich",
			want: map[string]any{"name": "John Doe", "city": "Zürich"},
		},
		{
			name: "percent encoded brackets act as structure",
			raw:  "tags%5B%5D=go&tags%5B%5D=http",
			want: map[string]any{
				"tags": map[string]any{"0": "go", "1": "http"},
			},
		},
		{
			name: "invalid percent escape kept raw",
			raw:  "bad=%zz",
			want: map[string]any{"bad": "%zz"},
		},
		{
			name: "duplicate flat keys last wins",
			raw:  "a=1&a=2&a=3",
			want: map[string]any{"a": "3"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, params.ParseQuery(tt.raw).Interface())
		})
	}
}

func TestParseQueryDeterministic(t *testing.T) {
	t.Parallel()

	raw := "foo[][]=1&foo[1][]=1&foo[1][]=1&bar=baz&q=a+b"
	first := params.ParseQuery(raw).Interface()
	second := params.ParseQuery(raw).Interface()

	assert.Equal(t, first, second)
}
