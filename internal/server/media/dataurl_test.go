package media

import (
	"encoding/base64"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid GIF
var gifBytes = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func TestDecodeImage(t *testing.T) {
	gif64 := base64.StdEncoding.EncodeToString(gifBytes)

	tests := []struct {
		name    string
		in      string
		max     int64
		wantCT  string
		wantExt string
		wantMsg string
	}{
		{name: "data url", in: "data:image/gif;base64," + gif64, wantCT: "image/gif", wantExt: "gif"},
		{name: "bare base64", in: gif64, wantCT: "image/gif", wantExt: "gif"},
		{name: "declared type ignored", in: "data:image/jpeg;base64," + gif64, wantCT: "image/gif", wantExt: "gif"},
		{name: "png", in: base64.StdEncoding.EncodeToString(pngHeader), wantCT: "image/png", wantExt: "png"},
		{name: "unpadded", in: base64.RawStdEncoding.EncodeToString(gifBytes), wantCT: "image/gif", wantExt: "gif"},
		{name: "empty", in: "  ", wantMsg: "Invalid image data"},
		{name: "not base64", in: "data:image/png;base64,@@@", wantMsg: "Invalid image data"},
		{name: "not base64 encoded data url", in: "data:image/png," + gif64, wantMsg: "Invalid image data"},
		{name: "text payload", in: base64.StdEncoding.EncodeToString([]byte("hello world")), wantMsg: "Invalid image data"},
		{name: "too large", in: gif64, max: 10, wantMsg: "Image is too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(tt.in, tt.max)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrorValidation)
				msg, _ := common.MessageOf(err)
				assert.Equal(t, tt.wantMsg, msg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCT, img.ContentType)
			assert.Equal(t, tt.wantExt, img.Ext())
		})
	}
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, "jpg", Image{ContentType: "image/jpeg"}.Ext())
	assert.Equal(t, "webp", Image{ContentType: "image/webp"}.Ext())
	assert.Equal(t, "bin", Image{ContentType: "weird"}.Ext())
}
