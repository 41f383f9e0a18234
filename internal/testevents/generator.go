package testevents

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Event profile distribution. Out of every ten generated events, this
// many take each shape.
const (
	profileProse     = 0
	profileTechnical = 1
	profileShort     = 2
	profileBot       = 3
	profileCommand   = 4
	profileCount     = 5
)

// Event mirrors the ingest request schema.
type Event struct {
	ID     string         `json:"id"`
	Source string         `json:"source"`
	Type   string         `json:"type"`
	Time   string         `json:"time"`
	Data   map[string]any `json:"data"`
}

// Generator produces synthetic comment events with a mix of substantive,
// technical, short, bot-authored, and command content.
type Generator struct {
	faker   *gofakeit.Faker
	authors []string
}

// NewGenerator creates a generator. A zero seed produces a random run.
func NewGenerator(seed uint64) *Generator {
	faker := gofakeit.New(int64(seed))
	authors := make([]string, 20)
	for i := range authors {
		authors[i] = faker.Username()
	}
	return &Generator{faker: faker, authors: authors}
}

// Generate returns n events cycling through the content profiles.
func (g *Generator) Generate(n int) []Event {
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, g.one(i%profileCount))
	}
	return events
}

func (g *Generator) one(profile int) Event {
	author := g.authors[g.faker.IntRange(0, len(g.authors)-1)]

	var body string
	switch profile {
	case profileTechnical:
		body = g.technicalBody()
	case profileShort:
		body = g.faker.Word()
	case profileBot:
		author = "dependabot[bot]"
		body = "Bumps the dependency group with one update."
	case profileCommand:
		body = "/" + g.faker.RandomString([]string{"retest", "assign", "lgtm", "hold"})
	default:
		body = g.faker.Paragraph(2, 4, 12, " ")
	}

	return Event{
		ID:     uuid.NewString(),
		Source: "github",
		Type:   "com.github.issue_comment.created",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Data: map[string]any{
			"comment": map[string]any{
				"body": body,
				"user": map[string]any{"login": author},
			},
		},
	}
}

// technicalBody produces content exercising the technical scorer: a
// fenced code block, vocabulary terms, and explanation structure.
func (g *Generator) technicalBody() string {
	return fmt.Sprintf(`## %s

The function below shows the interface change. For example, the
database cache layer now checks latency before each endpoint call,
which keeps the api runtime stable.

- reuse the existing framework
- avoid a second cache dependency

`+"```go\n  // %s\n  maxRetryCount := %d\n```",
		g.faker.HackerPhrase(),
		g.faker.HackerPhrase(),
		g.faker.IntRange(1, 9),
	)
}
