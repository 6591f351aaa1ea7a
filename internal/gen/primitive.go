package gen

import (
	"math"
	"time"

	"github.com/gofrs/uuid"

	genspec "github.com/ama5ter/spec2testdata/internal/spec"
)

// Word pools for fabricated identities. Enough variety for varied-looking
// fixtures; realism beyond that is the AI backend's job.
var (
	firstNames = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan", "judy"}
	lastNames  = []string{"smith", "jones", "brown", "taylor", "walker", "young", "wright", "lopez", "clark", "hall"}
	mailHosts  = []string{"example.com", "example.org", "example.net", "test.dev", "mail.test"}
	uriWords   = []string{"main", "search", "list", "category", "explore", "tag", "app", "blog", "post", "wp-content"}
	letters    = "abcdefghijklmnopqrstuvwxyz"
	tokenChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
)

// primitive synthesizes a scalar for the given schema. The schema's type is
// one of string/integer/number/boolean; anything else never reaches here.
func (s *Synthesizer) primitive(sc *genspec.Schema) any {
	switch sc.Type {
	case "string":
		return s.stringValue(sc)
	case "integer":
		lo, hi := int64(0), int64(1000)
		if sc.Min != nil {
			lo = int64(*sc.Min)
		}
		if sc.Max != nil {
			hi = int64(*sc.Max)
		}
		if hi < lo {
			hi = lo
		}
		return lo + s.rng.Int63n(hi-lo+1)
	case "number":
		lo, hi := 0.0, 1000.0
		if sc.Min != nil {
			lo = *sc.Min
		}
		if sc.Max != nil {
			hi = *sc.Max
		}
		if hi < lo {
			hi = lo
		}
		return math.Round((lo+s.rng.Float64()*(hi-lo))*100) / 100
	case "boolean":
		return s.rng.Intn(2) == 0
	}
	return nil
}

func (s *Synthesizer) stringValue(sc *genspec.Schema) any {
	switch sc.Format {
	case "date-time":
		return s.randomTime().Format(time.RFC3339)
	case "date":
		return s.dateThisDecade().Format("2006-01-02")
	case "email":
		return s.pick(firstNames) + "." + s.pick(lastNames) + "@" + s.pick(mailHosts)
	case "uuid":
		return s.uuidV4()
	case "uri":
		return "https://" + s.pick(lastNames) + "." + s.pick(mailHosts) + "/" + s.pick(uriWords) + "/" + s.pick(uriWords)
	case "password":
		return s.token(12)
	}

	if len(sc.Enum) > 0 {
		return sc.Enum[s.rng.Intn(len(sc.Enum))]
	}

	// Free text of uniformly random length within the declared bounds.
	// A declared regex pattern is NOT honored; plain text is emitted anyway.
	lo := int(sc.MinLength)
	if lo == 0 {
		lo = 5
	}
	hi := 10
	if sc.MaxLength != nil {
		hi = int(*sc.MaxLength)
	}
	if hi < lo {
		hi = lo
	}
	return s.text(lo + s.rng.Intn(hi-lo+1))
}

func (s *Synthesizer) pick(pool []string) string {
	return pool[s.rng.Intn(len(pool))]
}

func (s *Synthesizer) text(n int) string {
	b := make([]byte, n)
	for i := range b {
		// Spaces roughly every sixth character keep free text word-like,
		// never leading or trailing.
		if i > 0 && i < n-1 && s.rng.Intn(6) == 0 && b[i-1] != ' ' {
			b[i] = ' '
			continue
		}
		b[i] = letters[s.rng.Intn(len(letters))]
	}
	return string(b)
}

func (s *Synthesizer) token(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenChars[s.rng.Intn(len(tokenChars))]
	}
	return string(b)
}

// uuidV4 builds a version-4 UUID from the injected random source so runs
// with a fixed seed stay reproducible.
func (s *Synthesizer) uuidV4() string {
	var raw [16]byte
	s.rng.Read(raw[:])
	raw[6] = (raw[6] & 0x0f) | 0x40 // version 4
	raw[8] = (raw[8] & 0x3f) | 0x80 // RFC 4122 variant
	u, err := uuid.FromBytes(raw[:])
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return u.String()
}

// randomTime picks an instant between 2000-01-01 and now.
func (s *Synthesizer) randomTime() time.Time {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Now().Unix()
	if end <= start {
		end = start + 1
	}
	return time.Unix(start+s.rng.Int63n(end-start), 0).UTC()
}

// dateThisDecade picks a calendar date between the start of the current
// decade and today.
func (s *Synthesizer) dateThisDecade() time.Time {
	now := time.Now().UTC()
	start := time.Date(now.Year()-now.Year()%10, 1, 1, 0, 0, 0, 0, time.UTC)
	days := int(now.Sub(start).Hours()/24) + 1
	return start.AddDate(0, 0, s.rng.Intn(days))
}
