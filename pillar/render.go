package pillar

import (
	"fmt"
	"io"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/streamer"
	"github.com/lyraproj/dgo/tf"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/dgoyaml/yaml"
)

// RenderName is the name of the option value that describes how to render output
type RenderName string

const (
	// YAML render output in YAML
	YAML = RenderName(`yaml`)
	// JSON render output in JSON
	JSON = RenderName(`json`)
)

// Render renders a value on a writer using a specified RenderName
func Render(renderAs RenderName, value dgo.Value, out io.Writer) {
	switch renderAs {
	case JSON:
		if value == nil || value.Equals(vf.Nil) {
			util.WriteString(out, "null\n")
		} else {
			opts := streamer.DefaultOptions()
			opts.DedupLevel = streamer.NoDedup
			streamer.New(tf.DefaultAliases(), opts).Stream(value, streamer.JSON(out))
			util.WriteByte(out, '\n')
		}
	case YAML:
		if value == nil || value.Equals(vf.Nil) {
			util.WriteString(out, "\n")
		} else {
			bs, err := yaml.Marshal(value)
			if err != nil {
				panic(err)
			}
			util.WriteString(out, string(bs))
		}
	default:
		panic(fmt.Errorf(`unknown rendering '%s'`, renderAs))
	}
}
