package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dayline/internal/app"
	"dayline/internal/config"
	"dayline/internal/dates"
	"dayline/internal/db"
	"dayline/internal/domain"
	"dayline/internal/engine"
	"dayline/internal/migrate"
	"dayline/internal/repo"
	"dayline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "dl",
	Short: "Dayline CLI",
	Long: `Dayline tracks daily tasks, course goals, and a completion streak.
- Tasks: your todo list; completing one counts toward today's goal.
- Daily goal: how many completions make today count (default 5).
- Streak: consecutive days the goal was met; one missed day resets it.
- Focus: the single task you are working on right now.
- Courses: structured goals grouped by category; a goal can be converted
  into a linked task so finishing one finishes the other.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("DAYLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("profile", "", "profile id (overrides config)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(focusCmd())
	rootCmd.AddCommand(courseCmd())
	rootCmd.AddCommand(goalCmd())
	rootCmd.AddCommand(dailyGoalCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Config %s already exists\n", path)
				return nil
			}
			if profile == "" {
				profile = "local"
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault(profile)), 0o644); err != nil {
				return err
			}
			fmt.Printf("Initialized workspace: %s and %s\n", db.Path(workspace), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "profile id")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage config"}
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.ResolveConfig(viper.GetString("workspace"), viper.GetString("profile"))
			if err != nil {
				return err
			}
			return printJSONOrTable(c)
		},
	})
	return cfg
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's progress and streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s := e.Status(ctx)
				if viper.GetBool("json") {
					return printJSON(s)
				}
				fmt.Printf("Today: %d/%d", s.TodayCompleted, s.DailyGoal)
				if s.GoalMet {
					fmt.Print(" ✓ goal met")
				}
				fmt.Println()
				fmt.Printf("Streak: %d day(s)\n", s.Streak)
				if s.FocusID != "" {
					snap := e.Snapshot()
					for _, t := range snap.Todos {
						if t.ID == s.FocusID {
							fmt.Printf("Focus: %s\n", t.Text)
						}
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskAddCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskDoneCmd())
	task.AddCommand(taskRestoreCmd())
	task.AddCommand(taskEditCmd())
	task.AddCommand(taskRmCmd())
	return task
}

func taskAddCmd() *cobra.Command {
	var opts engine.TaskCreateOptions
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Text = args[0]
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, err := e.AddTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().IntVar(&opts.Days, "days", 0, "repeat over n days")
	cmd.Flags().StringVar(&opts.Color, "color", "", "display color")
	return cmd
}

func taskListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				snap := e.Snapshot()
				tasks := snap.Todos
				if !all {
					var active []domain.Task
					for _, t := range tasks {
						if !t.Completed {
							active = append(active, t)
						}
					}
					tasks = active
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Task", "Done", "Focus", "Linked"})
				for _, t := range tasks {
					done := ""
					if t.Completed {
						done = "✓"
					}
					focus := ""
					if t.ID == snap.FocusID {
						focus = "●"
					}
					linked := ""
					if t.LinkedGoalID != "" {
						linked = "goal"
					}
					tw.AppendRow(table.Row{t.ID, t.Text, done, focus, linked})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include completed tasks")
	return cmd
}

func taskDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.ToggleTask(ctx, args[0]) {
					return fmt.Errorf("task %s not found", args[0])
				}
				s := e.Status(ctx)
				if viper.GetBool("json") {
					return printJSON(s)
				}
				fmt.Printf("Today: %d/%d, streak %d\n", s.TodayCompleted, s.DailyGoal, s.Streak)
				return nil
			})
		},
	}
	return cmd
}

func taskRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Reopen a completed task (keeps today's count)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.RestoreTask(ctx, args[0]) {
					return fmt.Errorf("task %s not found or not completed", args[0])
				}
				return nil
			})
		},
	}
	return cmd
}

func taskEditCmd() *cobra.Command {
	var text, color string
	var days int
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts engine.TaskUpdateOptions
			if cmd.Flags().Changed("text") {
				opts.Text = &text
			}
			if cmd.Flags().Changed("days") {
				opts.Days = &days
			}
			if cmd.Flags().Changed("color") {
				opts.Color = &color
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, ok := e.UpdateTask(ctx, args[0], opts)
				if !ok {
					return fmt.Errorf("task %s not found", args[0])
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "task text")
	cmd.Flags().IntVar(&days, "days", 0, "repeat over n days")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	return cmd
}

func taskRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.DeleteTask(ctx, args[0]) {
					return fmt.Errorf("task %s not found", args[0])
				}
				return nil
			})
		},
	}
	return cmd
}

func focusCmd() *cobra.Command {
	focus := &cobra.Command{Use: "focus", Short: "Manage the focused task"}
	focus.AddCommand(&cobra.Command{
		Use:   "set <id>",
		Short: "Focus a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.SetFocus(ctx, args[0]) {
					return fmt.Errorf("task %s not found", args[0])
				}
				return nil
			})
		},
	})
	focus.AddCommand(&cobra.Command{
		Use:   "random",
		Short: "Focus a random active task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, ok := e.RandomFocus(ctx)
				if !ok {
					return errors.New("no active tasks")
				}
				fmt.Printf("Focus: %s\n", t.Text)
				return nil
			})
		},
	})
	focus.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the focus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				e.ClearFocus(ctx)
				return nil
			})
		},
	})
	return focus
}

func courseCmd() *cobra.Command {
	course := &cobra.Command{Use: "course", Short: "Manage courses"}
	course.AddCommand(courseAddCmd())
	course.AddCommand(courseListCmd())
	course.AddCommand(courseEditCmd())
	course.AddCommand(courseRmCmd())
	course.AddCommand(categoryCmd())
	return course
}

func courseAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a course (seeds Lectures and Assignments)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c := e.AddCourse(ctx, args[0])
				return printJSONOrTable(c)
			})
		},
	}
	return cmd
}

func courseListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses with goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				snap := e.Snapshot()
				if viper.GetBool("json") {
					return printJSON(snap.Courses)
				}
				for _, c := range snap.Courses {
					fmt.Printf("%s (%s)\n", c.Name, c.ID)
					for _, cat := range c.Categories {
						fmt.Printf("  %s (%s)\n", cat.Name, cat.ID)
						for _, g := range cat.Goals {
							mark := " "
							if g.Completed {
								mark = "✓"
							}
							fmt.Printf("    [%s] %s (%s)\n", mark, g.Title, g.ID)
						}
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func courseEditCmd() *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts engine.CourseUpdateOptions
			if cmd.Flags().Changed("name") {
				opts.Name = &name
			}
			if cmd.Flags().Changed("color") {
				opts.Color = &color
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, ok := e.UpdateCourse(ctx, args[0], opts)
				if !ok {
					return fmt.Errorf("course %s not found", args[0])
				}
				return printJSONOrTable(c)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "course name")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	return cmd
}

func courseRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.DeleteCourse(ctx, args[0]) {
					return fmt.Errorf("course %s not found", args[0])
				}
				return nil
			})
		},
	}
	return cmd
}

func categoryCmd() *cobra.Command {
	var courseID string
	cat := &cobra.Command{Use: "category", Short: "Manage course categories"}
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category to a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				c, ok := e.AddCategory(ctx, courseID, args[0])
				if !ok {
					return fmt.Errorf("course %s not found", courseID)
				}
				return printJSONOrTable(c)
			})
		},
	}
	add.Flags().StringVar(&courseID, "course", "", "course id")
	_ = add.MarkFlagRequired("course")
	var rmCourseID string
	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.DeleteCategory(ctx, rmCourseID, args[0]) {
					return fmt.Errorf("category %s not found", args[0])
				}
				return nil
			})
		},
	}
	rm.Flags().StringVar(&rmCourseID, "course", "", "course id")
	_ = rm.MarkFlagRequired("course")
	cat.AddCommand(add)
	cat.AddCommand(rm)
	return cat
}

func goalCmd() *cobra.Command {
	goal := &cobra.Command{Use: "goal", Short: "Manage course goals"}
	goal.AddCommand(goalAddCmd())
	goal.AddCommand(goalEditCmd())
	goal.AddCommand(goalToggleCmd())
	goal.AddCommand(goalConvertCmd())
	goal.AddCommand(goalRmCmd())
	return goal
}

func goalFlags(cmd *cobra.Command, courseID, categoryID *string) {
	cmd.Flags().StringVar(courseID, "course", "", "course id")
	cmd.Flags().StringVar(categoryID, "category", "", "category id")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("category")
}

func goalAddCmd() *cobra.Command {
	var courseID, categoryID string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				g, ok := e.AddGoal(ctx, courseID, categoryID, args[0])
				if !ok {
					return fmt.Errorf("category %s not found", categoryID)
				}
				return printJSONOrTable(g)
			})
		},
	}
	goalFlags(cmd, &courseID, &categoryID)
	return cmd
}

func goalEditCmd() *cobra.Command {
	var courseID, categoryID, title, subtitle string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts engine.GoalUpdateOptions
			if cmd.Flags().Changed("title") {
				opts.Title = &title
			}
			if cmd.Flags().Changed("subtitle") {
				opts.Subtitle = &subtitle
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				g, ok := e.UpdateGoal(ctx, courseID, categoryID, args[0], opts)
				if !ok {
					return fmt.Errorf("goal %s not found", args[0])
				}
				return printJSONOrTable(g)
			})
		},
	}
	goalFlags(cmd, &courseID, &categoryID)
	cmd.Flags().StringVar(&title, "title", "", "goal title")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "goal subtitle")
	return cmd
}

func goalToggleCmd() *cobra.Command {
	var courseID, categoryID string
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle a goal (mirrors a linked task, never counts toward the streak)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.ToggleGoal(ctx, courseID, categoryID, args[0]) {
					return fmt.Errorf("goal %s not found", args[0])
				}
				return nil
			})
		},
	}
	goalFlags(cmd, &courseID, &categoryID)
	return cmd
}

func goalConvertCmd() *cobra.Command {
	var courseID, categoryID string
	cmd := &cobra.Command{
		Use:   "convert <id>",
		Short: "Convert a goal into a linked task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				t, ok := e.ConvertGoal(ctx, courseID, categoryID, args[0])
				if !ok {
					return fmt.Errorf("goal %s not found", args[0])
				}
				return printJSONOrTable(t)
			})
		},
	}
	goalFlags(cmd, &courseID, &categoryID)
	return cmd
}

func goalRmCmd() *cobra.Command {
	var courseID, categoryID string
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if !e.DeleteGoal(ctx, courseID, categoryID, args[0]) {
					return fmt.Errorf("goal %s not found", args[0])
				}
				return nil
			})
		},
	}
	goalFlags(cmd, &courseID, &categoryID)
	return cmd
}

func dailyGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily-goal <n>",
		Short: "Set the daily completion goal (1-50)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
				return fmt.Errorf("invalid goal %q", args[0])
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.SetDailyGoal(ctx, n)
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	logc := &cobra.Command{Use: "log", Short: "Event log"}
	logc.AddCommand(logTailCmd())
	return logc
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				events, err := r.LatestEvents(ctx, n, evtType, entityKind)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := app.ResolveConfig(workspace, viper.GetString("profile"))
			if err != nil {
				return err
			}
			e, err := app.NewSession(cmd.Context(), conn, cfg, clock())
			if err != nil {
				return err
			}
			defer e.Flush()
			authCfg := server.AuthConfig{JWTSecret: os.Getenv("DAYLINE_JWT_SECRET")}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Dayline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func clock() dates.Clock {
	return dates.Clock{}
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := app.ResolveConfig(workspace, viper.GetString("profile"))
	if err != nil {
		return err
	}
	e, err := app.NewSession(ctx, conn, cfg, clock())
	if err != nil {
		return err
	}
	e.Notify = func(msg string) { fmt.Println(msg) }
	defer e.Flush()
	return fn(ctx, e)
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, repo.Repo{DB: conn})
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
