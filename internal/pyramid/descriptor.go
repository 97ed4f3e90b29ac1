package pyramid

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// DeepZoomNamespace is the XML namespace of Deep Zoom descriptors.
const DeepZoomNamespace = "http://schemas.microsoft.com/deepzoom/2008"

const descriptorTemplate = `<?xml version='1.0' encoding='UTF-8'?>
<Image TileSize='%d'
       Overlap='%d'
       Format='%s'
       xmlns='%s'>
    <Size Width='%d' Height='%d'/>
</Image>
`

// Descriptor renders a Deep Zoom XML manifest. Values are written verbatim;
// nothing is validated.
func Descriptor(tileSize, overlap int, format string, width, height int) string {
	return fmt.Sprintf(descriptorTemplate, tileSize, overlap, format, DeepZoomNamespace, width, height)
}

// Manifest is the parsed content of a Deep Zoom descriptor.
type Manifest struct {
	TileSize int    `json:"tile_size"`
	Overlap  int    `json:"overlap"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type xmlImage struct {
	XMLName  xml.Name `xml:"Image"`
	TileSize int      `xml:"TileSize,attr"`
	Overlap  int      `xml:"Overlap,attr"`
	Format   string   `xml:"Format,attr"`
	Size     struct {
		Width  int `xml:"Width,attr"`
		Height int `xml:"Height,attr"`
	} `xml:"Size"`
}

// ParseDescriptor reads a Deep Zoom descriptor such as one produced by
// Descriptor.
func ParseDescriptor(s string) (*Manifest, error) {
	var img xmlImage
	if err := xml.NewDecoder(strings.NewReader(s)).Decode(&img); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	if img.XMLName.Space != DeepZoomNamespace {
		return nil, fmt.Errorf("failed to parse descriptor: unexpected namespace %q", img.XMLName.Space)
	}
	return &Manifest{
		TileSize: img.TileSize,
		Overlap:  img.Overlap,
		Format:   img.Format,
		Width:    img.Size.Width,
		Height:   img.Size.Height,
	}, nil
}

// String renders the manifest back into a descriptor.
func (m *Manifest) String() string {
	return Descriptor(m.TileSize, m.Overlap, m.Format, m.Width, m.Height)
}
