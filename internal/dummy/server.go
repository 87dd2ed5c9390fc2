package dummy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

type ServerConfig struct {
	Port int
	Log  *slog.Logger
}

// Task mirrors the record served by the backends under test.
type Task struct {
	ID           int     `json:"id"`
	Summary      string  `json:"summary"`
	Description  *string `json:"description"`
	AssigneeID   int     `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name"`
}

var assignees = []string{"jane doe", "john doe", "max mustermann", "erika musterfrau"}

var summaries = []string{
	"fix wherever the login breaks",
	"write release notes",
	"rotate database credentials",
	"review pull request wherever possible",
	"update dependencies",
}

// SeedTasks returns n deterministic tasks.
func SeedTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		a := i % len(assignees)
		tasks[i] = Task{
			ID:           i + 1,
			Summary:      summaries[i%len(summaries)],
			AssigneeID:   a + 1,
			AssigneeName: assignees[a],
		}
		if i%3 == 0 {
			d := fmt.Sprintf("task number %d", i+1)
			tasks[i].Description = &d
		}
	}
	return tasks
}

// Handler serves GET /tasks with optional summary and assignee_name
// substring filters and a limit.
func Handler(tasks []Task) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		summary := q.Get("summary")
		assignee := q.Get("assignee_name")

		limit := len(tasks)
		if l := q.Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		out := make([]Task, 0, min(limit, len(tasks)))
		for _, t := range tasks {
			if len(out) >= limit {
				break
			}
			if summary != "" && !strings.Contains(t.Summary, summary) {
				continue
			}
			if assignee != "" && !strings.Contains(t.AssigneeName, assignee) {
				continue
			}
			out = append(out, t)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})
	return mux
}

// Start serves the seeded task list on cfg.Port in the background.
func Start(cfg ServerConfig) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("👻 Dummy backend running on http://localhost%s\n", addr)
	fmt.Println("   Endpoints: /tasks, /tasks?summary=&assignee_name=&limit=")

	server := &http.Server{
		Addr:    addr,
		Handler: Handler(SeedTasks(1000)),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if cfg.Log != nil {
				cfg.Log.Error("dummy backend failed", "addr", addr, "error", err)
			}
		}
	}()
	return server
}
