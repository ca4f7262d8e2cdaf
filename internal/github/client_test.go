// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github-repo-analyzer/internal/errors"
	"github-repo-analyzer/internal/model"
)

// apiPrefix is prepended by go-github when pointed at a non-github.com
// host via WithEnterpriseURLs.
const apiPrefix = "/api/v3"

// setupTestClient creates a httptest server and a Client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := NewClient("", server.URL, logger)
	require.NoError(t, err)

	return client, server
}

// linkNext writes a pagination Link header pointing at the next page.
func linkNext(w http.ResponseWriter, serverURL, path string, page int) {
	w.Header().Set("Link", fmt.Sprintf(`<%s%s%s?page=%d>; rel="next"`, serverURL, apiPrefix, path, page))
}

func TestClient_GetRepository(t *testing.T) {
	t.Run("maps repository metadata", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, apiPrefix+"/repos/octocat/Hello-World", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"name": "Hello-World",
				"owner": {"login": "octocat", "avatar_url": "https://avatars.example/octocat"},
				"description": "My first repository",
				"stargazers_count": 5,
				"forks_count": 2,
				"open_issues_count": 1,
				"watchers_count": 5,
				"subscribers_count": 3,
				"size": 42,
				"created_at": "2011-01-26T19:01:12Z",
				"html_url": "https://github.com/octocat/Hello-World",
				"default_branch": "master"
			}`)
		})
		client, _ := setupTestClient(t, handler)

		repo, err := client.GetRepository(context.Background(), "octocat", "Hello-World")

		require.NoError(t, err)
		assert.Equal(t, "Hello-World", repo.Name)
		assert.Equal(t, "octocat", repo.Owner)
		assert.Equal(t, "My first repository", repo.Description)
		assert.Equal(t, 5, repo.StarsCount)
		assert.Equal(t, 2, repo.ForksCount)
		assert.Equal(t, 1, repo.OpenIssuesCount)
		assert.Equal(t, 3, repo.WatchersCount, "watchers come from subscribers_count")
		assert.Equal(t, 42, repo.Size)
		assert.Equal(t, time.Date(2011, time.January, 26, 19, 1, 12, 0, time.UTC), repo.CreatedAt.UTC())
		assert.Equal(t, "https://github.com/octocat/Hello-World", repo.HTMLURL)
		assert.Equal(t, "https://avatars.example/octocat", repo.AvatarURL)
		assert.Equal(t, "master", repo.DefaultBranch)
	})

	t.Run("404 becomes ErrRepositoryNotFound", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"message": "Not Found"}`)
		})
		client, _ := setupTestClient(t, handler)

		_, err := client.GetRepository(context.Background(), "nobody", "nothing")

		require.Error(t, err)
		var notFound *apperrors.ErrRepositoryNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nobody", notFound.Owner)
		assert.Equal(t, "nothing", notFound.Name)
	})
}

func TestClient_ListCommits(t *testing.T) {
	commitsJSON := `[
		{"sha": "abc", "commit": {"author": {"name": "alice"}, "committer": {"date": "2023-03-14T12:00:00Z"}, "message": "fix: a bug"}},
		{"sha": "def", "commit": {"author": {"name": "bob"}, "committer": {"date": "2023-03-01T12:00:00Z"}, "message": "feat: new feature"}}
	]`

	t.Run("stops after five pages regardless of availability", func(t *testing.T) {
		var server *httptest.Server
		requested := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested++
			// Always advertise another page.
			linkNext(w, server.URL, "/repos/octocat/Hello-World/commits", requested+1)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, commitsJSON)
		})
		client, s := setupTestClient(t, handler)
		server = s

		commits := client.ListCommits(context.Background(), "octocat", "Hello-World")

		assert.Equal(t, 5, requested)
		assert.Len(t, commits, 10)
		assert.Equal(t, "alice", commits[0].Author)
		assert.Equal(t, "fix: a bug", commits[0].Message)
		assert.Equal(t, time.Date(2023, time.March, 14, 12, 0, 0, 0, time.UTC), commits[0].CommitDate.UTC())
	})

	t.Run("stops when no next page is advertised", func(t *testing.T) {
		requested := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested++
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, commitsJSON)
		})
		client, _ := setupTestClient(t, handler)

		commits := client.ListCommits(context.Background(), "octocat", "Hello-World")

		assert.Equal(t, 1, requested)
		assert.Len(t, commits, 2)
	})

	t.Run("page error degrades to commits accumulated so far", func(t *testing.T) {
		var server *httptest.Server
		requested := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested++
			if requested > 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			linkNext(w, server.URL, "/repos/octocat/Hello-World/commits", 2)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, commitsJSON)
		})
		client, s := setupTestClient(t, handler)
		server = s

		commits := client.ListCommits(context.Background(), "octocat", "Hello-World")

		assert.Len(t, commits, 2)
	})

	t.Run("full failure degrades to empty", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		client, _ := setupTestClient(t, handler)

		commits := client.ListCommits(context.Background(), "octocat", "Hello-World")

		assert.Empty(t, commits)
	})
}

func TestClient_ListContributors(t *testing.T) {
	t.Run("follows pagination to the end", func(t *testing.T) {
		var server *httptest.Server
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, apiPrefix+"/repos/octocat/Hello-World/contributors", r.URL.Path)
			if r.URL.Query().Get("page") == "2" {
				w.WriteHeader(http.StatusOK)
				fmt.Fprintln(w, `[{"login": "carol", "contributions": 3, "avatar_url": "https://avatars.example/carol"}]`)
				return
			}
			linkNext(w, server.URL, "/repos/octocat/Hello-World/contributors", 2)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[{"login": "octocat", "contributions": 10, "avatar_url": "https://avatars.example/octocat"}]`)
		})
		client, s := setupTestClient(t, handler)
		server = s

		contributors := client.ListContributors(context.Background(), "octocat", "Hello-World")

		require.Len(t, contributors, 2)
		assert.Equal(t, model.Contributor{Login: "octocat", Contributions: 10, AvatarURL: "https://avatars.example/octocat"}, contributors[0])
		assert.Equal(t, model.Contributor{Login: "carol", Contributions: 3, AvatarURL: "https://avatars.example/carol"}, contributors[1])
	})

	t.Run("failure degrades to empty", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		client, _ := setupTestClient(t, handler)

		assert.Empty(t, client.ListContributors(context.Background(), "octocat", "Hello-World"))
	})
}

func TestClient_ListLanguages(t *testing.T) {
	t.Run("returns the byte map", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, apiPrefix+"/repos/octocat/Hello-World/languages", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"Go": 7500, "Shell": 1000}`)
		})
		client, _ := setupTestClient(t, handler)

		languages := client.ListLanguages(context.Background(), "octocat", "Hello-World")

		assert.Equal(t, map[string]int{"Go": 7500, "Shell": 1000}, languages)
	})

	t.Run("failure degrades to empty map", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		client, _ := setupTestClient(t, handler)

		assert.Empty(t, client.ListLanguages(context.Background(), "octocat", "Hello-World"))
	})
}

func TestClient_ListBranches(t *testing.T) {
	t.Run("follows pagination and returns names", func(t *testing.T) {
		var server *httptest.Server
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				w.WriteHeader(http.StatusOK)
				fmt.Fprintln(w, `[{"name": "develop"}]`)
				return
			}
			linkNext(w, server.URL, "/repos/octocat/Hello-World/branches", 2)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[{"name": "master"}]`)
		})
		client, s := setupTestClient(t, handler)
		server = s

		branches := client.ListBranches(context.Background(), "octocat", "Hello-World")

		assert.Equal(t, []string{"master", "develop"}, branches)
	})
}

func TestClient_GetFileTree(t *testing.T) {
	t.Run("fetches the recursive tree for the branch", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, apiPrefix+"/repos/octocat/Hello-World/git/trees/master", r.URL.Path)
			assert.Equal(t, "1", r.URL.Query().Get("recursive"))
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"sha": "root", "tree": [
				{"path": "main.go", "type": "blob"},
				{"path": "internal", "type": "tree"}
			]}`)
		})
		client, _ := setupTestClient(t, handler)

		entries := client.GetFileTree(context.Background(), "octocat", "Hello-World", "master")

		require.Len(t, entries, 2)
		assert.Equal(t, model.TreeEntry{Path: "main.go", Type: model.TreeEntryBlob}, entries[0])
		assert.Equal(t, model.TreeEntry{Path: "internal", Type: model.TreeEntryTree}, entries[1])
	})

	t.Run("falls back to main when no branch is known", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, apiPrefix+"/repos/octocat/Hello-World/git/trees/main", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"sha": "root", "tree": []}`)
		})
		client, _ := setupTestClient(t, handler)

		entries := client.GetFileTree(context.Background(), "octocat", "Hello-World", "")

		assert.Empty(t, entries)
	})

	t.Run("failure degrades to empty tree", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		})
		client, _ := setupTestClient(t, handler)

		assert.Empty(t, client.GetFileTree(context.Background(), "octocat", "Hello-World", "master"))
	})
}
