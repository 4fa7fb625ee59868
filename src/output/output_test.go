package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-region-select/src/geom"
)

func TestFormat(t *testing.T) {
	r := geom.Rect{X: 100, Y: 100, Width: 200, Height: 300}
	tests := []struct {
		layout string
		want   string
	}{
		{"%x,%y %wx%h", "100,100 200x300"},
		{"%x,%y,%wx%h", "100,100,200x300"},
		{"%wx%h+%x+%y", "200x300+100+100"},
		{"100%%", "100%"},
		{"%q stays", "%q stays"},
		{"trailing %", "trailing %"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.layout, r))
		})
	}
}

func TestJSON(t *testing.T) {
	b, err := JSON(geom.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1,"y":2,"width":3,"height":4}`, string(b))
}
