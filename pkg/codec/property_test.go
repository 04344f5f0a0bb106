package codec

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

func generatedModel(ids []string, config, wiring map[string]string) *pipeline.Model {
	m := pipeline.NewModel()
	for i, id := range ids {
		b := pipeline.BlockInstance{
			FactoryID:           pipeline.FactoryID{Plugin: "core", Factory: id},
			ConfigurationValues: config,
			InputIDs:            wiring,
		}
		if i%2 == 1 {
			b.InputIDs = map[string]string{}
		}
		m.Blocks[id] = b
	}
	return m
}

// TestCodecProperties checks the round-trip law and the token invariants
// over generated models.
func TestCodecProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	idsGen := gen.SliceOf(gen.Identifier())
	configGen := gen.MapOf(gen.Identifier(), gen.AnyString())
	wiringGen := gen.MapOf(gen.Identifier(), gen.OneConstOf("", "a", "b", "missing"))

	properties.Property("decode inverts encode", prop.ForAll(
		func(ids []string, config, wiring map[string]string) bool {
			m := generatedModel(ids, config, wiring)
			token, err := Encode(m)
			if err != nil {
				return false
			}
			got, err := Decode(token)
			return err == nil && reflect.DeepEqual(got, m)
		},
		idsGen,
		configGen,
		wiringGen,
	))

	properties.Property("tokens are URL-safe", prop.ForAll(
		func(ids []string, config, wiring map[string]string) bool {
			token, err := Encode(generatedModel(ids, config, wiring))
			return err == nil && urlSafe.MatchString(token)
		},
		idsGen,
		configGen,
		wiringGen,
	))

	properties.Property("stats match the token", prop.ForAll(
		func(ids []string, config, wiring map[string]string) bool {
			m := generatedModel(ids, config, wiring)
			stats, err := CompressionStats(m)
			if err != nil {
				return false
			}
			token, _ := Encode(m)
			text, _ := Canonical(m)
			return stats.CompressedSize == len(token) && stats.OriginalSize == len(text)
		},
		idsGen,
		configGen,
		wiringGen,
	))

	properties.Property("arbitrary strings never decode into a partial model", prop.ForAll(
		func(token string) bool {
			m, err := Decode(token)
			if err != nil {
				return m == nil
			}
			return m.Validate() == nil
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
