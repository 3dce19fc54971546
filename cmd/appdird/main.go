package main

import (
	"fmt"
	"os"
	"syscall"

	"appdird/internal/app"
	"appdird/internal/config"
	"appdird/internal/directory"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a wired App. The caller must defer
// app.Close(). component identifies the CLI command being run.
func newApp(cmd *cobra.Command, component string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cmd.Context(), cfg, component)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "appdird",
	Short: "Application directory service",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Set auth.signing_key before starting the server.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the directory HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "serve")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve()
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage directory users",
}

var (
	userEmail     string
	userFirstname string
	userLastname  string
	userCompany   string
	userRole      string
)

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user with an explicit role",
	Long: `Add a user directly against the configured stores. The public
registration endpoint always assigns the "user" role; use this command to
bootstrap admin accounts. The password is prompted without echo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		a, err := newApp(cmd, "UserAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.CreateUser(cmd.Context(), userEmail, userFirstname, userLastname,
			userCompany, string(password), directory.Role(userRole))
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		fmt.Printf("User created: %s (%s, role=%s)\n", user.ID, user.Email, user.Role)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "user email (required)")
	userAddCmd.Flags().StringVar(&userFirstname, "firstname", "", "first name (required)")
	userAddCmd.Flags().StringVar(&userLastname, "lastname", "", "last name (required)")
	userAddCmd.Flags().StringVar(&userCompany, "company", "", "company/publisher the user administers")
	userAddCmd.Flags().StringVar(&userRole, "role", string(directory.RoleUser), "role: admin, user, or guest")
	userAddCmd.MarkFlagRequired("email")
	userAddCmd.MarkFlagRequired("firstname")
	userAddCmd.MarkFlagRequired("lastname")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
}
