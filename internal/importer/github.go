package importer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/errors"
)

const (
	// DefaultIssueQuery selects open issues assigned to the token owner.
	DefaultIssueQuery = "is:open is:issue assignee:@me"

	issuesPerPage = 50
	maxIssuePages = 10
)

// GitHubSource reads issues through the GitHub GraphQL API.
type GitHubSource struct {
	gql   *githubv4.Client
	query string
}

// NewGitHubSource creates a source authenticated with cfg.Token. An empty
// cfg.Query uses DefaultIssueQuery.
func NewGitHubSource(cfg config.GitHubConfig) (*GitHubSource, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.NewValidationError("a GitHub token is required (set TASKSTACK_GITHUB_TOKEN)").
			WithField("github.token")
	}
	src := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(context.Background(), src)
	return newGitHubSource(githubv4.NewClient(httpClient), cfg.Query), nil
}

// NewEnterpriseGitHubSource targets a GitHub Enterprise GraphQL endpoint
// with an already authenticated client.
func NewEnterpriseGitHubSource(endpoint string, httpClient *http.Client, query string) *GitHubSource {
	return newGitHubSource(githubv4.NewEnterpriseClient(endpoint, httpClient), query)
}

func newGitHubSource(gql *githubv4.Client, query string) *GitHubSource {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultIssueQuery
	}
	return &GitHubSource{gql: gql, query: query}
}

// Query returns the issue search query in use.
func (g *GitHubSource) Query() string {
	return g.query
}

// issue is the subset of a GitHub issue mapped onto a capture input.
type issue struct {
	Title      string
	URL        string `graphql:"url"`
	Number     int
	Repository struct {
		NameWithOwner string
	}
	Labels struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 20)"`
	Milestone *struct {
		DueOn *githubv4.DateTime
	}
}

// Fetch returns one input per matching issue.
func (g *GitHubSource) Fetch(ctx context.Context) ([]breakdown.Input, error) {
	type searchQuery struct {
		Search struct {
			PageInfo struct {
				EndCursor   githubv4.String
				HasNextPage bool
			}
			Nodes []struct {
				Issue issue `graphql:"... on Issue"`
			}
		} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $cursor)"`
	}

	variables := map[string]interface{}{
		"query":  githubv4.String(g.query),
		"first":  githubv4.Int(issuesPerPage),
		"cursor": (*githubv4.String)(nil),
	}

	var inputs []breakdown.Input
	for page := 0; page < maxIssuePages; page++ {
		var q searchQuery
		if err := g.gql.Query(ctx, &q, variables); err != nil {
			return nil, errors.Wrap(err, "search GitHub issues")
		}
		for _, n := range q.Search.Nodes {
			if n.Issue.Title == "" {
				continue
			}
			inputs = append(inputs, issueInput(n.Issue))
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
	}
	return inputs, nil
}

func issueInput(is issue) breakdown.Input {
	in := breakdown.Input{
		Title:      is.Title,
		Importance: labelImportance(is.Labels.Nodes),
		Notes:      fmt.Sprintf("%s#%d", is.Repository.NameWithOwner, is.Number),
		Link:       is.URL,
	}
	if is.Milestone != nil && is.Milestone.DueOn != nil {
		due := is.Milestone.DueOn.Time
		in.DueAt = &due
	}
	return in
}

// priorityTokens maps whole label words onto importance.
var priorityTokens = map[string]int{
	"p0": 5, "critical": 5, "urgent": 5,
	"p1": 4, "high": 4,
	"p3": 2, "low": 2,
}

// labelImportance maps common priority labels onto importance. Labels are
// split into words so "priority: high" matches but "highlight" does not.
// No match leaves importance unset so the default applies.
func labelImportance(labels []struct{ Name string }) int {
	best := 0
	for _, l := range labels {
		words := strings.FieldsFunc(strings.ToLower(l.Name), func(r rune) bool {
			switch r {
			case '-', '_', ':', ' ', '/':
				return true
			}
			return false
		})
		for _, w := range words {
			best = max(best, priorityTokens[w])
		}
	}
	return best
}
