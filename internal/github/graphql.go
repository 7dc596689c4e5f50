package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GraphQL query to walk the history of a revision expression, newest
// first. An expression that does not name a commit yields a null object.
const historyQuery = `
query($owner: String!, $name: String!, $expression: String!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    object(expression: $expression) {
      ... on Commit {
        oid
        history(first: 100, after: $cursor) {
          nodes {
            oid
            authoredDate
            parents(first: 1) {
              nodes { oid }
            }
          }
          pageInfo {
            hasNextPage
            endCursor
          }
        }
      }
    }
  }
}
`

// graphQL response types.

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type historyResponse struct {
	Repository struct {
		Object *historyObject `json:"object"`
	} `json:"repository"`
}

type historyObject struct {
	OID     string            `json:"oid"`
	History historyConnection `json:"history"`
}

type historyConnection struct {
	Nodes    []historyNode `json:"nodes"`
	PageInfo pageInfo      `json:"pageInfo"`
}

type historyNode struct {
	OID          string     `json:"oid"`
	AuthoredDate string     `json:"authoredDate"`
	Parents      parentList `json:"parents"`
}

type parentList struct {
	Nodes []struct {
		OID string `json:"oid"`
	} `json:"nodes"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// executeGraphQL sends a GraphQL query using the client's HTTP transport.
func (r *RemoteRepository) executeGraphQL(query string, variables map[string]interface{}) (json.RawMessage, error) {
	reqBody := graphQLRequest{
		Query:     query,
		Variables: variables,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling GraphQL request: %w", err)
	}

	graphqlURL := "https://api.github.com/graphql"
	if r.baseURL != "" {
		graphqlURL = deriveGraphQLURL(r.baseURL)
	}

	httpReq, err := http.NewRequestWithContext(r.ctx, http.MethodPost, graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating GraphQL request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := r.client.Client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing GraphQL request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GraphQL response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GraphQL request failed with status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp graphQLResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parsing GraphQL response: %w", err)
	}

	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", resp.Errors[0].Message)
	}

	return resp.Data, nil
}

// fetchHistoryGraphQL walks the history of expression, newest first, up to
// limit commits. Author dates are stored in the cache along the way. found
// is false when the expression does not resolve to a commit.
func (r *RemoteRepository) fetchHistoryGraphQL(expression string, limit int, firstParent bool) (h historyResult, found bool, err error) {
	var cursor *string
	parents := make(map[string]string)
	var tip string

	for {
		vars := map[string]interface{}{
			"owner":      r.owner,
			"name":       r.repo,
			"expression": expression,
		}
		if cursor != nil {
			vars["cursor"] = *cursor
		}

		data, err := r.executeGraphQL(historyQuery, vars)
		if err != nil {
			return historyResult{}, false, fmt.Errorf("fetching history of %s via GraphQL: %w", expression, err)
		}

		var resp historyResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return historyResult{}, false, fmt.Errorf("parsing history response: %w", err)
		}
		obj := resp.Repository.Object
		if obj == nil || obj.OID == "" {
			return historyResult{}, false, nil
		}
		tip = obj.OID

		for _, node := range obj.History.Nodes {
			if date, ok := parseDate(node.AuthoredDate); ok {
				r.cache.putDate(node.OID, date)
			}
			if firstParent {
				if len(node.Parents.Nodes) > 0 {
					parents[node.OID] = node.Parents.Nodes[0].OID
				} else {
					parents[node.OID] = ""
				}
				continue
			}
			if len(h.commits) == limit {
				h.truncated = true
				return h, true, nil
			}
			h.commits = append(h.commits, node.OID)
		}

		if !obj.History.PageInfo.HasNextPage {
			break
		}
		if !firstParent && len(h.commits) == limit {
			h.truncated = true
			break
		}
		if firstParent && (len(parents) >= r.maxCommits || firstParentChainLength(tip, parents) >= limit) {
			break
		}
		cursor = &obj.History.PageInfo.EndCursor
	}

	if firstParent {
		h = walkFirstParents(tip, parents, limit)
	}
	return h, true, nil
}

// walkFirstParents follows first parents from tip through the fetched
// commits. A parent missing from the fetched set ends the walk as truncated.
func walkFirstParents(tip string, parents map[string]string, limit int) historyResult {
	var h historyResult
	for sha := tip; sha != ""; {
		parent, ok := parents[sha]
		if !ok {
			h.truncated = true
			break
		}
		if len(h.commits) == limit {
			h.truncated = true
			break
		}
		h.commits = append(h.commits, sha)
		sha = parent
	}
	return h
}

func firstParentChainLength(tip string, parents map[string]string) int {
	n := 0
	for sha := tip; sha != ""; n++ {
		parent, ok := parents[sha]
		if !ok {
			break
		}
		sha = parent
	}
	return n
}

// deriveGraphQLURL converts a GitHub REST API base URL to the corresponding
// GraphQL endpoint. For GitHub Enterprise, the REST base URL is typically
// "https://ghe.example.com/api/v3" and the GraphQL endpoint is
// "https://ghe.example.com/api/graphql" (not "/api/v3/graphql").
func deriveGraphQLURL(baseURL string) string {
	if strings.HasSuffix(baseURL, "/api/v3") {
		return baseURL[:len(baseURL)-len("/api/v3")] + "/api/graphql"
	}
	if strings.HasSuffix(baseURL, "/api/v3/") {
		return baseURL[:len(baseURL)-len("/api/v3/")] + "/api/graphql"
	}
	return strings.TrimRight(baseURL, "/") + "/graphql"
}

func parseDate(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	when, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, false
	}
	return when.Unix(), true
}
