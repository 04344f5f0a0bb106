package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"testing"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

func oneBlockModel() *pipeline.Model {
	m := pipeline.NewModel()
	m.Blocks["block-1"] = pipeline.BlockInstance{
		FactoryID:           pipeline.FactoryID{Plugin: "core", Factory: "model"},
		ConfigurationValues: map[string]string{"param1": "value1"},
		InputIDs:            map[string]string{},
	}
	return m
}

// tokenFor compresses arbitrary text the same way Encode does
func tokenFor(text string) string {
	return encoding.EncodeToString(snappy.Encode(nil, []byte(text)))
}

// TestRoundTrip tests that Decode inverts Encode
func TestRoundTrip(t *testing.T) {
	unusual := pipeline.NewModel()
	unusual.Blocks["b"] = pipeline.BlockInstance{
		FactoryID: pipeline.FactoryID{Plugin: "ecmwf", Factory: "plot"},
		ConfigurationValues: map[string]string{
			"title":   "Température 2m ✓ 雨",
			"query":   `a"b&c=d<e>f?g#h`,
			"escapes": "tab\there\nnewline \\ slash /",
			"empty":   "",
		},
		InputIDs: map[string]string{"data": "", "overlay": "b"},
	}

	nilMaps := pipeline.NewModel()
	nilMaps.Blocks["n"] = pipeline.BlockInstance{
		FactoryID: pipeline.FactoryID{Plugin: "core", Factory: "model"},
	}

	tests := []struct {
		name  string
		model *pipeline.Model
	}{
		{"one block", oneBlockModel()},
		{"empty blocks", pipeline.NewModel()},
		{"unicode and transport characters", unusual},
		{"nil maps", nilMaps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Encode(tt.model)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if !urlSafe.MatchString(token) {
				t.Errorf("token %q is not URL-safe", token)
			}

			got, err := Decode(token)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.model) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tt.model)
			}
		})
	}
}

// TestEncode_Deterministic tests that equal models produce equal tokens
func TestEncode_Deterministic(t *testing.T) {
	a := pipeline.NewModel()
	b := pipeline.NewModel()
	keys := []string{"z", "a", "m", "q", "c"}
	for i, k := range keys {
		a.Blocks[k] = oneBlockModel().Blocks["block-1"]
		b.Blocks[keys[len(keys)-1-i]] = oneBlockModel().Blocks["block-1"]
	}

	ta, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	tb, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if ta != tb {
		t.Error("insertion order changed the token")
	}
}

// TestEncode_NilModel tests the nil model error
func TestEncode_NilModel(t *testing.T) {
	if _, err := Encode(nil); !errors.Is(err, ErrNilModel) {
		t.Errorf("Expected ErrNilModel, got %v", err)
	}
	if _, err := CompressionStats(nil); !errors.Is(err, ErrNilModel) {
		t.Errorf("Expected ErrNilModel, got %v", err)
	}
}

// TestCanonical tests the canonical text form
func TestCanonical(t *testing.T) {
	text, err := Canonical(oneBlockModel())
	if err != nil {
		t.Fatalf("Canonical failed: %v", err)
	}
	want := `{"blocks":{"block-1":{"factory_id":{"plugin":"core","factory":"model"},"configuration_values":{"param1":"value1"},"input_ids":{}}}}`
	if string(text) != want {
		t.Errorf("Canonical =\n%s\nwant\n%s", text, want)
	}

	m := pipeline.NewModel()
	m.Blocks["x"] = pipeline.BlockInstance{
		FactoryID:           pipeline.FactoryID{Plugin: "p", Factory: "f"},
		ConfigurationValues: map[string]string{"v": "<&>"},
	}
	text, err = Canonical(m)
	if err != nil {
		t.Fatalf("Canonical failed: %v", err)
	}
	if !regexp.MustCompile(`"v":"<&>"`).Match(text) {
		t.Errorf("HTML characters should not be escaped: %s", text)
	}
}

// TestEncode_ZeroModel tests that a zero Model encodes like an empty one
func TestEncode_ZeroModel(t *testing.T) {
	text, err := Canonical(&pipeline.Model{})
	if err != nil {
		t.Fatalf("Canonical failed: %v", err)
	}
	if string(text) != `{"blocks":{}}` {
		t.Errorf("Canonical = %s, want {\"blocks\":{}}", text)
	}

	zero := &pipeline.Model{}
	token, err := Encode(zero)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if zero.Blocks != nil {
		t.Error("Encode mutated its input")
	}

	decoded, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Len() != 0 || decoded.Blocks == nil {
		t.Errorf("Expected an empty model, got %+v", decoded)
	}

	empty, _ := Encode(pipeline.NewModel())
	if token != empty {
		t.Error("zero and empty models should share a token")
	}
}

// claimToken builds a token whose snappy header claims n decoded bytes.
func claimToken(n uint64) string {
	buf := binary.AppendUvarint(nil, n)
	return encoding.EncodeToString(append(buf, 0x00, 'x'))
}

// TestDecode_Rejects tests that bad tokens yield no model
func TestDecode_Rejects(t *testing.T) {
	valid, err := Encode(oneBlockModel())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name      string
		token     string
		wantErr   error
		wantStage string
	}{
		{"empty", "", ErrEmptyToken, StageText},
		{"invalid string", "invalid-string", ErrCorruptToken, ""},
		{"truncated", valid[:len(valid)-4], ErrCorruptToken, ""},
		{"padding", valid + "==", ErrCorruptToken, StageText},
		{"whitespace", " " + valid, ErrCorruptToken, StageText},
		{"standard alphabet", "ab+/", ErrCorruptToken, StageText},
		{"oversized claim", claimToken(1 << 30), ErrCorruptToken, StageDecompress},
		{"not json", tokenFor("hello"), ErrMalformedModel, StageParse},
		{"wrong member", tokenFor(`{"notBlocks":{}}`), ErrMalformedModel, StageParse},
		{"unknown nested field", tokenFor(`{"blocks":{"a":{"factory_id":{"plugin":"p","factory":"f"},"extra":1}}}`), ErrMalformedModel, StageParse},
		{"wrong value type", tokenFor(`{"blocks":{"a":{"factory_id":{"plugin":"p","factory":"f"},"configuration_values":{"k":1}}}}`), ErrMalformedModel, StageParse},
		{"trailing data", tokenFor(`{"blocks":{}} {}`), ErrMalformedModel, StageParse},
		{"missing blocks", tokenFor(`{}`), ErrInvalidSchema, StageSchema},
		{"null document", tokenFor(`null`), ErrInvalidSchema, StageSchema},
		{"empty factory id", tokenFor(`{"blocks":{"a":{"factory_id":{"plugin":"","factory":"f"}}}}`), ErrInvalidSchema, StageSchema},
		{"empty block id", tokenFor(`{"blocks":{"":{"factory_id":{"plugin":"p","factory":"f"}}}}`), ErrInvalidSchema, StageSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.token)
			if m != nil {
				t.Errorf("Expected nil model, got %+v", m)
			}
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantStage != "" && StageOf(err) != tt.wantStage {
				t.Errorf("Stage = %q, want %q", StageOf(err), tt.wantStage)
			}
		})
	}
}

// TestDecode_NullInputIsUnconnected tests that a JSON null producer decodes as unconnected
func TestDecode_NullInputIsUnconnected(t *testing.T) {
	token := tokenFor(`{"blocks":{"r":{"factory_id":{"plugin":"core","factory":"regrid"},"configuration_values":{},"input_ids":{"dataset":null}}}}`)

	m, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := m.Blocks["r"].Producer("dataset"); ok {
		t.Error("Expected dataset to be unconnected")
	}
	if _, present := m.Blocks["r"].InputIDs["dataset"]; !present {
		t.Error("Expected slot key to be kept")
	}
}

// TestIsTooLarge tests the advisory threshold
func TestIsTooLarge(t *testing.T) {
	small, err := Encode(oneBlockModel())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if IsTooLarge(small) {
		t.Errorf("one-block token of %d chars flagged as too large", len(small))
	}

	large := pipeline.NewModel()
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	for i, id := range ids {
		large.Blocks[id] = pipeline.BlockInstance{
			FactoryID: pipeline.FactoryID{Plugin: "core", Factory: "regrid"},
			ConfigurationValues: map[string]string{
				"grid":   uuid.NewString(),
				"method": uuid.NewString(),
				"area":   uuid.NewString(),
			},
			InputIDs: map[string]string{
				"dataset": ids[(i+1)%len(ids)],
				"mask":    ids[(i+7)%len(ids)],
			},
		}
	}
	token, err := Encode(large)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !IsTooLarge(token) {
		t.Errorf("100-block token of %d chars not flagged", len(token))
	}

	// Advisory only: oversized tokens still decode
	if _, err := Decode(token); err != nil {
		t.Errorf("oversized token failed to decode: %v", err)
	}

	if IsTooLarge(string(make([]byte, MaxTokenLength))) {
		t.Error("token at the limit should not be flagged")
	}
}

// TestCompressionStats tests stats consistency
func TestCompressionStats(t *testing.T) {
	models := []*pipeline.Model{pipeline.NewModel(), oneBlockModel()}
	for i := 0; i < 20; i++ {
		m := oneBlockModel()
		m.Blocks[fmt.Sprintf("extra-%d", i)] = m.Blocks["block-1"]
		models = append(models, m)
	}

	for _, m := range models {
		stats, err := CompressionStats(m)
		if err != nil {
			t.Fatalf("CompressionStats failed: %v", err)
		}
		token, _ := Encode(m)
		text, _ := Canonical(m)

		if stats.CompressedSize != len(token) {
			t.Errorf("CompressedSize = %d, token length %d", stats.CompressedSize, len(token))
		}
		if stats.OriginalSize != len(text) {
			t.Errorf("OriginalSize = %d, canonical length %d", stats.OriginalSize, len(text))
		}
		want := float64(stats.CompressedSize) / float64(stats.OriginalSize)
		if stats.Ratio != want {
			t.Errorf("Ratio = %f, want %f", stats.Ratio, want)
		}
	}
}
