package codec

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/skeletonize/pkg/errors"
)

// Format is an output image format.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Formats lists the supported output formats.
var Formats = []string{string(FormatPNG), string(FormatGIF), string(FormatBMP), string(FormatTIFF)}

// extensions maps lower-case file extensions to formats.
var extensions = map[string]Format{
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// Extensions lists the file extensions [Encode] accepts.
var Extensions = []string{".png", ".gif", ".bmp", ".tif", ".tiff"}

// ParseFormat validates a format name such as "png" or "tif".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	if s == "tif" {
		s = string(FormatTIFF)
	}
	if err := errors.ValidateFormat(s, Formats); err != nil {
		return "", err
	}
	return Format(s), nil
}

// FormatFromPath derives the output format from path's extension.
func FormatFromPath(path string) (Format, error) {
	if err := errors.ValidateExtension(path, Extensions); err != nil {
		return "", err
	}
	return extensions[strings.ToLower(filepath.Ext(path))], nil
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// Extension returns the canonical file extension for f, with the dot.
func (f Format) Extension() string {
	if f == FormatTIFF {
		return ".tif"
	}
	return "." + string(f)
}
