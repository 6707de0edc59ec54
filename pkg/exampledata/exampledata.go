// Package exampledata composes seeded, random JSON examples of client models.
//
// Examples follow the wire shape of a model: the discriminator value first,
// then the model's own properties, then those of its ancestors. Dotted
// serialized names of flattened properties become nested objects. Constants
// are left out. Optional properties are generated until MaxDepth is reached;
// required ones always are, except that past MaxDepth a model already being
// generated further up is left out, so cyclic models terminate.
//
// A model with a property whose name looks like a credential has no example:
// ModelJSON returns a *generrors.CredentialError instead.
package exampledata

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/blimu-dev/clientgen/pkg/clientmodel"
	"github.com/blimu-dev/clientgen/pkg/convert"
	"github.com/blimu-dev/clientgen/pkg/generrors"
	"github.com/blimu-dev/clientgen/pkg/logging"
	"github.com/blimu-dev/clientgen/pkg/resolver"
)

const (
	// DefaultSeed seeds the generator unless WithSeed says otherwise.
	DefaultSeed int64 = 3

	MaxDepth        = 5
	MaxStringLength = 16
	MaxListSize     = 4
	MaxDictSize     = 4

	// RedactedPlaceholder replaces string values under credential-like names.
	RedactedPlaceholder = "fakeTokenPlaceholder"
)

// CredentialKeywords are matched, case-insensitively, as substrings of
// serialized names.
var CredentialKeywords = []string{"key", "code", "credential", "password", "token", "secret", "authorization"}

// exampleEpoch is the earliest generated date-time. Generated values fall
// within the following 356 days.
var exampleEpoch = time.Date(2020, time.December, 20, 0, 0, 0, 0, time.UTC)

// IsPossibleCredential reports whether name contains a credential keyword.
func IsPossibleCredential(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range CredentialKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the random seed. Zero keeps DefaultSeed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		if seed != 0 {
			g.seed = seed
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(g *Generator) { g.logger = logging.OrNop(l) }
}

// Generator produces examples for the models of a registry. It is not safe
// for concurrent use: examples depend on the order they are requested in.
type Generator struct {
	models *clientmodel.Registry
	seed   int64
	faker  *gofakeit.Faker
	logger logging.Logger

	// path counts the models on the current nesting path.
	path map[*clientmodel.ClientModel]int
}

// New returns a Generator resolving model references through models.
func New(models *clientmodel.Registry, opts ...Option) *Generator {
	g := &Generator{
		models: models,
		seed:   DefaultSeed,
		logger: logging.NopLogger{},
		path:   make(map[*clientmodel.ClientModel]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.faker = gofakeit.New(g.seed)
	return g
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 { return g.seed }

// ModelJSON returns a random JSON object shaped like m.
func (g *Generator) ModelJSON(m *clientmodel.ClientModel) (map[string]any, error) {
	return g.modelJSON(0, m)
}

func (g *Generator) modelJSON(depth int, m *clientmodel.ClientModel) (map[string]any, error) {
	obj := make(map[string]any)
	g.path[m]++
	defer func() { g.path[m]-- }()

	if m.PolymorphicDiscriminator != "" && m.SerializedName != "" {
		names := []string{m.PolymorphicDiscriminator}
		if m.NeedsFlatten {
			names = resolver.SplitFlattenedName(m.PolymorphicDiscriminator)
		}
		if err := put(obj, names, m.SerializedName); err != nil {
			return nil, err
		}
	}

	for _, owner := range append([]*clientmodel.ClientModel{m}, g.models.Ancestors(m)...) {
		for _, p := range owner.Properties {
			if err := g.property(depth, obj, p); err != nil {
				return nil, err
			}
		}
	}
	return obj, nil
}

func (g *Generator) property(depth int, obj map[string]any, p *clientmodel.Property) error {
	if p.IsDiscriminator || p.Constant || p.AdditionalProperties {
		return nil
	}
	// Required properties are always generated. Cycles through them are
	// cut in typeJSON.
	if !p.Required && depth > MaxDepth {
		return nil
	}
	v, err := g.typeJSON(depth, p.Type)
	if err != nil || v == nil {
		return err
	}
	names := p.FlattenedNames
	if len(names) == 0 {
		names = []string{p.SerializedName}
	}
	return put(obj, names, v)
}

// put stores v under the nested path names, creating intermediate objects.
func put(obj map[string]any, names []string, v any) error {
	for _, name := range names {
		if IsPossibleCredential(name) {
			return &generrors.CredentialError{Name: name, Path: strings.Join(names, ".")}
		}
	}
	for _, name := range names[:len(names)-1] {
		next, ok := obj[name].(map[string]any)
		if !ok {
			if _, taken := obj[name]; taken {
				return nil
			}
			next = make(map[string]any)
			obj[name] = next
		}
		obj = next
	}
	obj[names[len(names)-1]] = v
	return nil
}

// typeJSON returns a random wire value of t, or nil when none should be
// generated.
func (g *Generator) typeJSON(depth int, t clientmodel.Type) (any, error) {
	switch v := clientmodel.Underlying(t).(type) {
	case *clientmodel.ConvertedType:
		client := g.clientValue(v.Client)
		if client == nil {
			return nil, nil
		}
		return convert.ToWire(v.Encoding, client)
	case *clientmodel.EnumType:
		return g.enumJSON(v)
	case *clientmodel.ListType:
		list := make([]any, 0, MaxListSize)
		if depth > MaxDepth {
			return list, nil
		}
		for i, n := 0, g.faker.IntRange(1, MaxListSize); i < n; i++ {
			e, err := g.typeJSON(depth+1, v.Elem)
			if err != nil {
				return nil, err
			}
			if e != nil {
				list = append(list, e)
			}
		}
		return list, nil
	case *clientmodel.MapType:
		dict := make(map[string]any, MaxDictSize)
		if depth > MaxDepth {
			return dict, nil
		}
		for i, n := 0, g.faker.IntRange(1, MaxDictSize); i < n; i++ {
			e, err := g.typeJSON(depth+1, v.Elem)
			if err != nil {
				return nil, err
			}
			if e != nil {
				dict[g.randomString()] = e
			}
		}
		return dict, nil
	case *clientmodel.ModelType:
		m, ok := g.models.Get(v.Name)
		if !ok {
			g.logger.Debug("example skips unknown model", "model", v.Name)
			return nil, nil
		}
		if depth > MaxDepth && g.path[m] > 0 {
			g.logger.Debug("example cuts a model cycle", "model", m.Name, "depth", depth)
			return nil, nil
		}
		return g.modelJSON(depth+1, m)
	}
	return g.primitiveJSON(clientmodel.Underlying(t)), nil
}

func (g *Generator) primitiveJSON(t clientmodel.Type) any {
	switch t {
	case clientmodel.Duration:
		return convert.FormatDurationRFC3339(g.clientValue(t).(time.Duration))
	case clientmodel.Time:
		return g.clientValue(t).(time.Time).Format(time.RFC3339)
	case clientmodel.Bytes:
		return base64.StdEncoding.EncodeToString([]byte(g.randomString()))
	case clientmodel.Decimal:
		return json.Number(decimal.NewFromFloat(g.faker.Float64Range(0, 100)).Round(2).String())
	case clientmodel.AnyObject:
		return map[string]any{g.randomString(): "data" + g.randomString()}
	}
	return g.clientValue(t)
}

// clientValue returns a random Go value of a scalar client type.
func (g *Generator) clientValue(t clientmodel.Type) any {
	switch t {
	case clientmodel.Bool:
		return g.faker.Bool()
	case clientmodel.Int32:
		return int32(g.faker.IntRange(0, math.MaxInt32))
	case clientmodel.Int64:
		return g.faker.Int64() & math.MaxInt64
	case clientmodel.Float32, clientmodel.Float64:
		return decimal.NewFromFloat(g.faker.Float64Range(0, 100)).Round(2).InexactFloat64()
	case clientmodel.String:
		return g.randomString()
	case clientmodel.Rune:
		return string(g.randomString()[0])
	case clientmodel.Any:
		return "data" + g.randomString()
	case clientmodel.Duration:
		return time.Duration(g.faker.IntRange(0, 10*24*60*60)) * time.Second
	case clientmodel.Time:
		return exampleEpoch.Add(time.Duration(g.faker.IntRange(0, 356*24*60*60)) * time.Second)
	case clientmodel.UUID:
		return uuid.MustParse(g.faker.UUID()).String()
	case clientmodel.Bytes:
		return []byte(g.randomString())
	}
	return nil
}

func (g *Generator) enumJSON(e *clientmodel.EnumType) (any, error) {
	if len(e.Values) == 0 {
		return nil, nil
	}
	value := e.Values[g.faker.IntRange(0, len(e.Values)-1)].Value
	switch e.ElementType {
	case clientmodel.Int32, clientmodel.Int64:
		return cast.ToInt64E(value)
	case clientmodel.Float32, clientmodel.Float64:
		return cast.ToFloat64E(value)
	case clientmodel.Bool:
		return cast.ToBoolE(value)
	}
	return value, nil
}

// randomString returns 1 to MaxStringLength lowercase letters.
func (g *Generator) randomString() string {
	return strings.ToLower(g.faker.LetterN(uint(g.faker.IntRange(1, MaxStringLength))))
}
