package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"dayline/internal/domain"
	"dayline/internal/engine"
	"dayline/internal/repo"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"invalid_input"`
	Message string         `json:"message" example:"daily goal must be between 1 and 50"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}
type bodyBytesKey struct{}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Dayline API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Dayline API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerStatus(group, cfg.Engine)
	registerSnapshot(group, cfg.Engine)
	registerTasks(group, cfg.Engine)
	registerFocus(group, cfg.Engine)
	registerProfile(group, cfg.Engine)
	registerCourses(group, cfg.Engine)
	registerGoals(group, cfg.Engine)
	registerEvents(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	startWebhookDispatcher(cfg.Engine)

	return router, nil
}

func bodyBytes(ctx context.Context) []byte {
	if b, ok := ctx.Value(bodyBytesKey{}).([]byte); ok {
		return b
	}
	return nil
}

func rawBodyMap(ctx context.Context) map[string]json.RawMessage {
	m := map[string]json.RawMessage{}
	_ = json.Unmarshal(bodyBytes(ctx), &m)
	return m
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "must be between"),
		strings.Contains(lowered, "invalid"),
		strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, "invalid_input", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func notFound(what string) huma.StatusError {
	return newAPIError(http.StatusNotFound, "not_found", what+" not found", nil)
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Dayline API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerStatus(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Daily goal and streak status",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body StatusResponse `json:"body"`
	}, error) {
		s := e.Status(ctx)
		return &struct {
			Body StatusResponse `json:"body"`
		}{Body: StatusResponse{
			TodayCompleted: s.TodayCompleted,
			DailyGoal:      s.DailyGoal,
			Streak:         s.Streak,
			GoalMet:        s.GoalMet,
			FocusID:        s.FocusID,
		}}, nil
	})
}

func registerSnapshot(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot",
		Method:      http.MethodGet,
		Path:        "/snapshot",
		Summary:     "Full state snapshot",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body domain.Snapshot `json:"body"`
	}, error) {
		return &struct {
			Body domain.Snapshot `json:"body"`
		}{Body: e.Snapshot()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "apply-snapshot",
		Method:      http.MethodPut,
		Path:        "/snapshot",
		Summary:     "Apply a remote snapshot",
		Description: "Applies a snapshot pushed by another session. Echoes of snapshots saved by this session are discarded.",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body domain.Snapshot `json:"body"`
	}) (*struct {
		Body ApplySnapshotResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "body required", nil)
		}
		applied := e.ApplyRemote(ctx, input.Body)
		return &struct {
			Body ApplySnapshotResponse `json:"body"`
		}{Body: ApplySnapshotResponse{Applied: applied, Revision: input.Body.Revision}}, nil
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "body required", nil)
		}
		opts := engine.TaskCreateOptions{Text: input.Body.Text}
		if input.Body.Days != nil {
			opts.Days = *input.Body.Days
		}
		if input.Body.Color != nil {
			opts.Color = *input.Body.Color
		}
		t, err := e.AddTask(ctx, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
	}, func(ctx context.Context, input *struct {
		Completed *bool `query:"completed"`
	}) (*struct {
		Body []TaskResponse `json:"body"`
	}, error) {
		snap := e.Snapshot()
		tasks := snap.Todos
		if input.Completed != nil {
			filtered := tasks[:0:0]
			for _, t := range tasks {
				if t.Completed == *input.Completed {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}
		return &struct {
			Body []TaskResponse `json:"body"`
		}{Body: mapTasks(tasks)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "body required", nil)
		}
		t, ok := e.UpdateTask(ctx, input.ID, engine.TaskUpdateOptions{
			Text:  input.Body.Text,
			Days:  input.Body.Days,
			Color: input.Body.Color,
		})
		if !ok {
			return nil, notFound("task")
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if !e.DeleteTask(ctx, input.ID) {
			return nil, notFound("task")
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/toggle",
		Summary:     "Toggle task completion",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body StatusResponse `json:"body"`
	}, error) {
		if !e.ToggleTask(ctx, input.ID) {
			return nil, notFound("task")
		}
		s := e.Status(ctx)
		return &struct {
			Body StatusResponse `json:"body"`
		}{Body: StatusResponse{
			TodayCompleted: s.TodayCompleted,
			DailyGoal:      s.DailyGoal,
			Streak:         s.Streak,
			GoalMet:        s.GoalMet,
			FocusID:        s.FocusID,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "restore-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/restore",
		Summary:     "Reopen a completed task",
		Description: "Reopens the task without rolling back the daily counter or streak.",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if !e.RestoreTask(ctx, input.ID) {
			return nil, notFound("task")
		}
		return &struct{}{}, nil
	})
}

func registerFocus(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "set-focus",
		Method:      http.MethodPut,
		Path:        "/focus",
		Summary:     "Set the focused task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body SetFocusRequest `json:"body"`
	}) (*struct{}, error) {
		if input.Body.TaskID == "" {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "task_id is required", nil)
		}
		if !e.SetFocus(ctx, input.Body.TaskID) {
			return nil, notFound("task")
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "clear-focus",
		Method:      http.MethodDelete,
		Path:        "/focus",
		Summary:     "Clear the focused task",
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		e.ClearFocus(ctx)
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "random-focus",
		Method:      http.MethodPost,
		Path:        "/focus/random",
		Summary:     "Focus a random active task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		t, ok := e.RandomFocus(ctx)
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", "no active tasks", nil)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})
}

func registerProfile(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "set-daily-goal",
		Method:      http.MethodPut,
		Path:        "/profile/daily-goal",
		Summary:     "Set the daily completion goal",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SetDailyGoalRequest `json:"body"`
	}) (*struct {
		Body StatusResponse `json:"body"`
	}, error) {
		if err := e.SetDailyGoal(ctx, input.Body.DailyGoal); err != nil {
			return nil, handleError(err)
		}
		s := e.Status(ctx)
		return &struct {
			Body StatusResponse `json:"body"`
		}{Body: StatusResponse{
			TodayCompleted: s.TodayCompleted,
			DailyGoal:      s.DailyGoal,
			Streak:         s.Streak,
			GoalMet:        s.GoalMet,
			FocusID:        s.FocusID,
		}}, nil
	})
}

func registerCourses(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-course",
		Method:        http.MethodPost,
		Path:          "/courses",
		Summary:       "Create course",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body CreateCourseRequest `json:"body"`
	}) (*struct {
		Body CourseResponse `json:"body"`
	}, error) {
		c := e.AddCourse(ctx, input.Body.Name)
		return &struct {
			Body CourseResponse `json:"body"`
		}{Body: courseResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-courses",
		Method:      http.MethodGet,
		Path:        "/courses",
		Summary:     "List courses",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []CourseResponse `json:"body"`
	}, error) {
		snap := e.Snapshot()
		return &struct {
			Body []CourseResponse `json:"body"`
		}{Body: mapCourses(snap.Courses)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-course",
		Method:      http.MethodPatch,
		Path:        "/courses/{id}",
		Summary:     "Update course",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string              `path:"id"`
		Body UpdateCourseRequest `json:"body"`
	}) (*struct {
		Body CourseResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "body required", nil)
		}
		c, ok := e.UpdateCourse(ctx, input.ID, engine.CourseUpdateOptions{
			Name:  input.Body.Name,
			Color: input.Body.Color,
		})
		if !ok {
			return nil, notFound("course")
		}
		return &struct {
			Body CourseResponse `json:"body"`
		}{Body: courseResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-course",
		Method:      http.MethodDelete,
		Path:        "/courses/{id}",
		Summary:     "Delete course",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if !e.DeleteCourse(ctx, input.ID) {
			return nil, notFound("course")
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-category",
		Method:        http.MethodPost,
		Path:          "/courses/{id}/categories",
		Summary:       "Add category to course",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body CreateCategoryRequest `json:"body"`
	}) (*struct {
		Body CategoryResponse `json:"body"`
	}, error) {
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "name is required", nil)
		}
		cat, ok := e.AddCategory(ctx, input.ID, input.Body.Name)
		if !ok {
			return nil, notFound("course")
		}
		return &struct {
			Body CategoryResponse `json:"body"`
		}{Body: categoryResponse(cat)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-category",
		Method:      http.MethodDelete,
		Path:        "/courses/{id}/categories/{category_id}",
		Summary:     "Delete category",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID         string `path:"id"`
		CategoryID string `path:"category_id"`
	}) (*struct{}, error) {
		if !e.DeleteCategory(ctx, input.ID, input.CategoryID) {
			return nil, notFound("category")
		}
		return &struct{}{}, nil
	})
}

func registerGoals(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-goal",
		Method:        http.MethodPost,
		Path:          "/courses/{id}/categories/{category_id}/goals",
		Summary:       "Add goal to category",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID         string            `path:"id"`
		CategoryID string            `path:"category_id"`
		Body       CreateGoalRequest `json:"body"`
	}) (*struct {
		Body GoalResponse `json:"body"`
	}, error) {
		if input.Body.Title == "" {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "title is required", nil)
		}
		g, ok := e.AddGoal(ctx, input.ID, input.CategoryID, input.Body.Title)
		if !ok {
			return nil, notFound("category")
		}
		return &struct {
			Body GoalResponse `json:"body"`
		}{Body: goalResponse(g)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-goal",
		Method:      http.MethodPatch,
		Path:        "/courses/{id}/categories/{category_id}/goals/{goal_id}",
		Summary:     "Update goal",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID         string            `path:"id"`
		CategoryID string            `path:"category_id"`
		GoalID     string            `path:"goal_id"`
		Body       UpdateGoalRequest `json:"body"`
	}) (*struct {
		Body GoalResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "invalid_input", "body required", nil)
		}
		opts := engine.GoalUpdateOptions{
			Title:    input.Body.Title,
			Subtitle: input.Body.Subtitle,
		}
		// "pdf_attachment": null detaches; absent leaves it alone.
		if raw, ok := rawBodyMap(ctx)["pdf_attachment"]; ok {
			pdf := input.Body.PDF
			if string(raw) == "null" {
				pdf = nil
			}
			opts.PDF = &pdf
		}
		g, ok := e.UpdateGoal(ctx, input.ID, input.CategoryID, input.GoalID, opts)
		if !ok {
			return nil, notFound("goal")
		}
		return &struct {
			Body GoalResponse `json:"body"`
		}{Body: goalResponse(g)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-goal",
		Method:      http.MethodDelete,
		Path:        "/courses/{id}/categories/{category_id}/goals/{goal_id}",
		Summary:     "Delete goal",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID         string `path:"id"`
		CategoryID string `path:"category_id"`
		GoalID     string `path:"goal_id"`
	}) (*struct{}, error) {
		if !e.DeleteGoal(ctx, input.ID, input.CategoryID, input.GoalID) {
			return nil, notFound("goal")
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-goal",
		Method:      http.MethodPost,
		Path:        "/courses/{id}/categories/{category_id}/goals/{goal_id}/toggle",
		Summary:     "Toggle goal completion",
		Description: "Mirrors completion to a linked task but never counts toward the daily goal.",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID         string `path:"id"`
		CategoryID string `path:"category_id"`
		GoalID     string `path:"goal_id"`
	}) (*struct{}, error) {
		if !e.ToggleGoal(ctx, input.ID, input.CategoryID, input.GoalID) {
			return nil, notFound("goal")
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "convert-goal",
		Method:        http.MethodPost,
		Path:          "/courses/{id}/categories/{category_id}/goals/{goal_id}/convert",
		Summary:       "Convert goal to a linked task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID         string `path:"id"`
		CategoryID string `path:"category_id"`
		GoalID     string `path:"goal_id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		t, ok := e.ConvertGoal(ctx, input.ID, input.CategoryID, input.GoalID)
		if !ok {
			return nil, notFound("goal")
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Recent events",
	}, func(ctx context.Context, input *struct {
		Limit      int    `query:"limit" default:"50"`
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind"`
	}) (*struct {
		Body []EventResponse `json:"body"`
	}, error) {
		items, err := e.Repo.LatestEvents(ctx, input.Limit, input.Type, input.EntityKind)
		if err != nil {
			return nil, handleError(err)
		}
		res := []EventResponse{}
		for _, evt := range items {
			res = append(res, eventResponse(evt))
		}
		return &struct {
			Body []EventResponse `json:"body"`
		}{Body: res}, nil
	})
}
