package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jakechorley/friendzone/internal/config"
	"github.com/jakechorley/friendzone/internal/metrics"
	"github.com/jakechorley/friendzone/pkg/clients/calendarclient"
	"github.com/jakechorley/friendzone/pkg/core/matching"
	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/core/services"
	"github.com/jakechorley/friendzone/pkg/db"
	"github.com/jakechorley/friendzone/pkg/utils"
	"github.com/jakechorley/friendzone/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg      *config.Config
	oauthCfg *config.OAuthClientConfig
	database *db.DB
	source   *services.CalendarAvailabilitySource
	logger   *zap.Logger
	ctx      context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "FriendZone CLI - Find compatible friends",
		Long:  `A CLI tool for ranking friend matches by shared interests, personality compatibility, and free-time overlap.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.logger != nil {
					app.logger.Sync()
				}
				if app.database != nil {
					app.database.Close()
				}
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(findMatchesCmd())
	rootCmd.AddCommand(compareUsersCmd())
	rootCmd.AddCommand(syncAvailabilityCmd())
	rootCmd.AddCommand(addPersonCmd())
	rootCmd.AddCommand(addRecurringBusyCmd())
	rootCmd.AddCommand(listPeopleCmd())
	rootCmd.AddCommand(connectCalendarCmd())
	rootCmd.AddCommand(serveMetricsCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, and the availability source
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Load OAuth client configuration
	app.logger.Info("Loading OAuth client configuration")
	app.oauthCfg, err = config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	app.logger.Debug("OAuth configuration loaded successfully")

	// Connect to the database and bring the schema up to date
	app.logger.Info("Connecting to database")
	app.database, err = db.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := app.database.RunMigrations(app.ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.logger.Info("Database initialized successfully")

	app.source = services.NewCalendarAvailabilitySource(app.oauthCfg, app.database)

	return nil
}

// weightFlags registers the shared scoring-weight flags on a command.
func weightFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("interest", 40, "Interest weight (0-100 slider)")
	cmd.Flags().Float64("schedule", 30, "Schedule weight (0-100 slider)")
	cmd.Flags().Float64("personality", 30, "Personality weight (0-100 slider)")
	cmd.Flags().String("preset", "", fmt.Sprintf("Weight preset (%s)", strings.Join(matching.PresetNames(), ", ")))
}

// weightsFromFlags resolves the effective weights: explicit sliders win,
// then a named preset, then the configured default preset, then the
// engine defaults.
func weightsFromFlags(cmd *cobra.Command) (model.WeightSet, error) {
	if cmd.Flags().Changed("interest") || cmd.Flags().Changed("schedule") || cmd.Flags().Changed("personality") {
		interest, _ := cmd.Flags().GetFloat64("interest")
		schedule, _ := cmd.Flags().GetFloat64("schedule")
		personality, _ := cmd.Flags().GetFloat64("personality")
		return matching.WeightsFromSliders(interest, schedule, personality)
	}

	if preset, _ := cmd.Flags().GetString("preset"); preset != "" {
		return matching.WeightsForPreset(preset), nil
	}

	if app.cfg.Matching.DefaultPreset != "" {
		return matching.WeightsForPreset(app.cfg.Matching.DefaultPreset), nil
	}

	return model.WeightSet{}, nil
}

// Command definitions

func findMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findMatches <requester_id>",
		Short: "Rank everyone against the requester by combined match score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weights, err := weightsFromFlags(cmd)
			if err != nil {
				return err
			}

			result, err := services.FindMatches(app.ctx, app.database, app.source, app.logger, services.FindMatchesOptions{
				RequesterID:          args[0],
				Weights:              weights,
				HorizonDays:          app.cfg.Calendar.HorizonDays,
				OverlapCapHours:      app.cfg.Matching.OverlapCapHours,
				MaxConcurrentFetches: app.cfg.Calendar.MaxConcurrentFetches,
				FetchTimeout:         30 * time.Second,
			})
			if err != nil {
				return err
			}

			// Display results
			if len(result.Results) == 0 {
				fmt.Println("\nNo matches found.")
			} else {
				fmt.Printf("\nFound %d matches:\n\n", len(result.Results))
				for i, match := range result.Results {
					fmt.Printf("%2d. %s (%s) - score %d\n", i+1, match.Name, match.CandidateID, match.FinalScore)
					fmt.Printf("    interests %d | schedule %d | personality %d (%s)\n",
						match.Scores.Interest,
						match.Scores.Schedule,
						match.Scores.Personality,
						match.Details.Personality.Tag)
					if len(match.Details.CommonInterests) > 0 {
						fmt.Printf("    shared: %s\n", strings.Join(match.Details.CommonInterests, ", "))
					}
				}
			}

			if len(result.Failures) > 0 {
				fmt.Printf("\n%d candidates could not be scored:\n", len(result.Failures))
				for _, failure := range result.Failures {
					fmt.Printf("  - %s: %v\n", failure.CandidateID, failure.Err)
				}
			}
			fmt.Println()

			return nil
		},
	}

	weightFlags(cmd)

	return cmd
}

func compareUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compareUsers <requester_id> <candidate_id>",
		Short: "Show the full score breakdown for two people",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weights, err := weightsFromFlags(cmd)
			if err != nil {
				return err
			}

			comparison, err := services.CompareUsers(app.ctx, app.database, app.source, app.logger, services.CompareUsersOptions{
				RequesterID:     args[0],
				CandidateID:     args[1],
				Weights:         weights,
				HorizonDays:     app.cfg.Calendar.HorizonDays,
				OverlapCapHours: app.cfg.Matching.OverlapCapHours,
			})
			if err != nil {
				return err
			}

			result := comparison.Result
			fmt.Printf("\n%s vs %s (%s)\n\n", args[0], result.Name, result.CandidateID)
			fmt.Printf("Final score:  %d\n\n", result.FinalScore)
			fmt.Printf("Interests:    %d (weight %.2f)\n", result.Scores.Interest, comparison.Weights.Interest)
			if len(result.Details.CommonInterests) > 0 {
				fmt.Printf("  shared: %s\n", strings.Join(result.Details.CommonInterests, ", "))
			}
			fmt.Printf("Schedule:     %d (weight %.2f, %.1f overlapping hours)\n",
				result.Scores.Schedule, comparison.Weights.Schedule, result.Details.TotalOverlapHours)
			for _, slot := range result.Details.OverlapSlots {
				fmt.Printf("  %s %02d:%02d-%02d:%02d\n", slot.Day,
					slot.Start/60, slot.Start%60, slot.End/60, slot.End%60)
			}
			fmt.Printf("Personality:  %d (weight %.2f, %s)\n",
				result.Scores.Personality, comparison.Weights.Personality, result.Details.Personality.Tag)
			for _, rule := range result.Details.Personality.SatisfiedRules {
				fmt.Printf("  %s\n", rule)
			}
			fmt.Println()

			return nil
		},
	}

	weightFlags(cmd)

	return cmd
}

func syncAvailabilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "syncAvailability <person_id>",
		Short: "Materialize a person's free time over the configured horizon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.SyncAvailability(app.ctx, app.database, app.source, app.logger, args[0], app.cfg.Calendar.HorizonDays)
			if err != nil {
				return err
			}

			fmt.Printf("\nFree time for %s (%s to %s):\n\n",
				result.PersonID,
				result.From.Format("2006-01-02"),
				result.To.Format("2006-01-02"))

			if len(result.Days) == 0 {
				fmt.Println("No availability found - no calendar connected and no recurring entries.")
			}
			for _, day := range result.Days {
				fmt.Printf("  %s:", day.Day)
				for _, slot := range day.Slots {
					fmt.Printf(" %02d:%02d-%02d:%02d", slot.Start/60, slot.Start%60, slot.End/60, slot.End%60)
				}
				fmt.Println()
			}
			fmt.Printf("\nTotal free: %.1f hours\n\n", result.TotalFree)

			return nil
		},
	}
}

func addPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addPerson <name> <email>",
		Short: "Add a person to the matching pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			interests, _ := cmd.Flags().GetStringSlice("interests")
			personality, _ := cmd.Flags().GetString("personality")

			if personality != "" {
				if err := matching.ValidatePersonalityCode(personality); err != nil {
					return err
				}
				personality = strings.ToUpper(personality)
			}

			person := &db.Person{
				ID:              uuid.New().String(),
				Name:            args[0],
				Email:           args[1],
				Interests:       interests,
				PersonalityCode: personality,
			}
			if err := app.database.InsertPerson(app.ctx, person); err != nil {
				return err
			}

			fmt.Printf("\n✓ Person added\n\nID: %s\n\n", person.ID)

			return nil
		},
	}

	cmd.Flags().StringSlice("interests", nil, "Comma-separated interests")
	cmd.Flags().String("personality", "", "4-letter personality code (e.g. INFJ)")

	return cmd
}

func addRecurringBusyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addRecurringBusy <person_id> <rrule>",
		Short: "Declare a recurring commitment for a person (e.g. FREQ=WEEKLY;BYDAY=MO,WE)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			start, err := parseClock(from)
			if err != nil {
				return err
			}
			end, err := parseClock(to)
			if err != nil {
				return err
			}
			if end <= start {
				return fmt.Errorf("--to (%s) must be after --from (%s)", to, from)
			}

			if err := calendarclient.ValidateRRule(args[1]); err != nil {
				return err
			}

			person, err := app.database.GetPerson(app.ctx, args[0])
			if err != nil {
				return err
			}

			entry := &db.RecurringBusyEntry{
				ID:           uuid.New().String(),
				PersonID:     person.ID,
				RRule:        args[1],
				StartMinutes: start,
				EndMinutes:   end,
			}
			if err := app.database.AddRecurringBusy(app.ctx, entry); err != nil {
				return err
			}

			fmt.Printf("\n✓ Recurring commitment added for %s (%s %s-%s)\n\n", person.Name, args[1], from, to)

			return nil
		},
	}

	cmd.Flags().String("from", "", "Start of the busy window (HH:MM)")
	cmd.Flags().String("to", "", "End of the busy window (HH:MM)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

// parseClock converts an HH:MM string to minutes from midnight.
func parseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM): %w", value, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func listPeopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listPeople",
		Short: "List everyone in the matching pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			people, err := app.database.GetPeople(app.ctx)
			if err != nil {
				return fmt.Errorf("failed to list people: %w", err)
			}

			app.logger.Info("People fetched successfully", zap.Int("count", len(people)))

			fmt.Printf("\nFound %d people:\n\n", len(people))
			for _, p := range people {
				code := p.PersonalityCode
				if code == "" {
					code = "----"
				}
				fmt.Printf("- %s (%s) - %s - %s", p.Name, p.ID, code, p.Email)
				if len(p.Interests) > 0 {
					fmt.Printf(" [%s]", strings.Join(p.Interests, ", "))
				}
				fmt.Println()
			}
			fmt.Println()

			return nil
		},
	}
}

func connectCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connectCalendar <person_id>",
		Short: "Authorize calendar access for a person and store the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			personID := args[0]

			person, err := app.database.GetPerson(app.ctx, personID)
			if err != nil {
				return err
			}

			oauthConfig, err := utils.GetOAuthConfig(app.oauthCfg, []string{utils.ScopeCalendarReadonly})
			if err != nil {
				return err
			}

			token, err := utils.RunAuthFlow(app.ctx, oauthConfig)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			err = app.database.UpsertToken(app.ctx, &db.CalendarToken{
				ID:           uuid.New().String(),
				PersonID:     person.ID,
				AccessToken:  token.AccessToken,
				RefreshToken: token.RefreshToken,
				TokenType:    token.TokenType,
				Expiry:       token.Expiry,
			})
			if err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}

			fmt.Printf("\n✓ Calendar connected for %s\n\n", person.Name)

			return nil
		},
	}
}

func serveMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serveMetrics",
		Short: "Serve Prometheus metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := app.cfg.MetricsAddr
			if addr == "" {
				addr = "localhost:9091"
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())

			app.logger.Info("Serving metrics", zap.String("addr", addr))
			fmt.Printf("Serving metrics on http://%s/metrics\n", addr)

			return http.ListenAndServe(addr, mux)
		},
	}
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (authenticate once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without re-authenticating.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				// Parse command
				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				// Handle exit
				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("Goodbye!")
					return nil
				}

				// Handle help
				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				// Execute command via Cobra
				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full Execute() flow
				// This avoids re-running PersistentPreRunE which would call initApp() again
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("Error parsing flags: %v\n\n", err)
					continue
				}

				// Get non-flag args after parsing flags
				cmdArgs = targetCmd.Flags().Args()

				// Validate args
				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}

				// Execute the RunE function directly
				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("Error: %v\n\n", err)
					}
				} else if targetCmd.Run != nil {
					targetCmd.Run(targetCmd, cmdArgs)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	// Get command names and sort them
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	// Print each command with its short description
	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-40s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}
