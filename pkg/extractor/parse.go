package extractor

import (
	"referralflow/pkg/domain"
	"referralflow/pkg/serrors"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/xeipuuv/gojsonschema"
)

// profileSchema accepts the loose shapes models actually produce: lists or
// comma separated strings for skills and positions, numbers or strings for
// years. At least one useful key has to be present.
const profileSchema = `{
  "type": "object",
  "properties": {
    "candidate_name": {"type": ["string", "null"]},
    "top_skills": {"type": ["array", "string", "null"], "items": {"type": ["string", "number"]}},
    "years_of_experience": {"type": ["string", "number", "null"]},
    "positions": {"type": ["array", "string", "null"], "items": {"type": "string"}}
  },
  "anyOf": [
    {"required": ["top_skills"]},
    {"required": ["positions"]},
    {"required": ["candidate_name"]}
  ]
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
})

// ExtractJSONObject returns the span from the first '{' to the last '}' of
// generated text.
func ExtractJSONObject(generated string) (string, error) {
	start := strings.IndexByte(generated, '{')
	end := strings.LastIndexByte(generated, '}')
	if start < 0 || end <= start {
		return "", serrors.With(ErrMalformed, "no JSON object in model output")
	}

	return generated[start : end+1], nil
}

// ParseGenerated extracts, validates and decodes the profile embedded in raw
// model output. Errors match ErrMalformed.
func ParseGenerated(generated string) (domain.Profile, error) {
	raw, err := ExtractJSONObject(generated)
	if err != nil {
		return domain.Profile{}, err
	}

	return ParseProfile([]byte(raw))
}

// ParseProfile validates raw against the profile schema and decodes it.
func ParseProfile(raw []byte) (domain.Profile, error) {
	schema, err := compiledSchema()
	if err != nil {
		return domain.Profile{}, errors.Wrap(err, "compile profile schema")
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return domain.Profile{}, serrors.Wrap(ErrMalformed, err, "model output is not valid JSON")
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}

		return domain.Profile{}, serrors.With(ErrMalformed, "model output does not match profile: %s", strings.Join(msgs, "; "))
	}

	p := domain.Profile{Source: domain.ProfileSourceModel}
	if err := jx.DecodeBytes(raw).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "candidate_name":
			v, err := decodeScalar(d)
			if err != nil {
				return errors.Wrap(err, "candidate_name")
			}
			p.CandidateName = v
		case "top_skills":
			v, err := decodeList(d)
			if err != nil {
				return errors.Wrap(err, "top_skills")
			}
			p.TopSkills = v
		case "years_of_experience":
			v, err := decodeScalar(d)
			if err != nil {
				return errors.Wrap(err, "years_of_experience")
			}
			p.YearsOfExperience = v
		case "positions":
			v, err := decodeList(d)
			if err != nil {
				return errors.Wrap(err, "positions")
			}
			p.Positions = v
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return domain.Profile{}, serrors.Wrap(ErrMalformed, err, "could not decode profile")
	}

	return p, nil
}

// decodeScalar reads a string, number or null as trimmed text.
func decodeScalar(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()

		return strings.TrimSpace(s), err
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}

		return n.String(), nil
	case jx.Null:
		return "", d.Null()
	default:
		return "", d.Skip()
	}
}

// decodeList reads an array of scalars or a comma separated string. Blank and
// repeated entries are dropped, order is kept.
func decodeList(d *jx.Decoder) ([]string, error) {
	var items []string
	switch d.Next() {
	case jx.Array:
		if err := d.Arr(func(d *jx.Decoder) error {
			v, err := decodeScalar(d)
			if err != nil {
				return err
			}
			items = append(items, v)

			return nil
		}); err != nil {
			return nil, err
		}
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return nil, err
		}
		items = strings.Split(s, ",")
	case jx.Null:
		return nil, d.Null()
	default:
		return nil, d.Skip()
	}

	return compact(items), nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}

	return out
}
