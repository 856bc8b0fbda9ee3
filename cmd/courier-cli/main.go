package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/corvusHold/courier/internal/version"
)

var (
	cfgFile   string
	apiURL    string
	apiToken  string
	verbose   bool
	outputFmt string
)

// Config holds CLI configuration
type Config struct {
	APIURL   string `mapstructure:"api_url"`
	APIToken string `mapstructure:"api_token"`
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "courier-cli",
	Short:   "Courier CLI - contacts and email dispatch from the terminal",
	Version: version.String(),
	Long: `Courier CLI talks to the Courier API: manage your contact directory,
send templated emails, and review delivery statistics and history.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initConfig()
		if verbose {
			fmt.Printf("API URL: %s\n", apiURL)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.courier-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Courier API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "API bearer token (see issue-token)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "output format (table, json)")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("api_token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".courier-cli")
	}

	viper.SetEnvPrefix("COURIER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Printf("Using config file: %s\n", viper.ConfigFileUsed())
	}

	if apiURL == "" {
		apiURL = viper.GetString("api_url")
	}
	if apiToken == "" {
		apiToken = viper.GetString("api_token")
	}
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
}

func newClient() *CourierClient {
	return NewClient(apiURL, apiToken, os.Stdout)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contact id %q", s)
	}
	return id, nil
}

// Contact commands
var contactsCmd = &cobra.Command{
	Use:     "contacts",
	Aliases: []string{"clients"},
	Short:   "Contact directory commands",
	Long:    "Add, list, update, search and remove contacts",
}

var contactsAddCmd = &cobra.Command{
	Use:   "add [name] [email]",
	Short: "Add a contact",
	Long:  "Add a contact. Quote names that contain spaces.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().AddContact(args[0], args[1])
	},
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().ListContacts("")
	},
}

var contactsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search contacts by name or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().ListContacts(args[0])
	},
}

var contactsGetCmd = &cobra.Command{
	Use:   "get [contact-id]",
	Short: "Show one contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return newClient().GetContact(id)
	},
}

var (
	updateName  string
	updateEmail string
)

var contactsUpdateCmd = &cobra.Command{
	Use:   "update [contact-id]",
	Short: "Change a contact's name or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var name, email *string
		if cmd.Flags().Changed("name") {
			name = &updateName
		}
		if cmd.Flags().Changed("email") {
			email = &updateEmail
		}
		if name == nil && email == nil {
			return fmt.Errorf("nothing to update: pass --name and/or --email")
		}
		return newClient().UpdateContact(id, name, email)
	},
}

var contactsRemoveCmd = &cobra.Command{
	Use:     "remove [contact-id]",
	Aliases: []string{"rm"},
	Short:   "Remove a contact",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return newClient().RemoveContact(id)
	},
}

func init() {
	contactsUpdateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	contactsUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "new email")

	contactsCmd.AddCommand(contactsAddCmd)
	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsSearchCmd)
	contactsCmd.AddCommand(contactsGetCmd)
	contactsCmd.AddCommand(contactsUpdateCmd)
	contactsCmd.AddCommand(contactsRemoveCmd)
}

// Dispatch commands
var (
	sendContact  int64
	sendTo       string
	sendName     string
	sendTemplate string
	sendVars     []string
)

var sendCmd = &cobra.Command{
	Use:   "send [subject]",
	Short: "Send a templated email",
	Long: `Send a templated email to a stored contact (--contact) or an explicit
address (--to). Template variables are passed as --var key=value.`,
	Example: `  courier-cli send --contact 1 --template welcome_email "Welcome to our service"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendContact <= 0 && sendTo == "" {
			return fmt.Errorf("one of --contact or --to is required")
		}
		vars, err := parseVars(sendVars)
		if err != nil {
			return err
		}
		req := SendRequest{Template: sendTemplate, Subject: args[0], Variables: vars}
		if sendContact > 0 {
			req.ContactID = &sendContact
		} else {
			req.ToEmail = sendTo
			req.ToName = sendName
		}
		return newClient().Send(req)
	},
}

func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", p)
		}
		vars[strings.TrimSpace(k)] = v
	}
	return vars, nil
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available email templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().ListTemplates()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show delivery statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().Stats()
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent delivery attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().History(historyLimit)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check API health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().CheckHealth()
	},
}

func init() {
	sendCmd.Flags().Int64Var(&sendContact, "contact", 0, "contact id to send to")
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient email when not sending to a contact")
	sendCmd.Flags().StringVar(&sendName, "name", "", "recipient name used with --to")
	sendCmd.Flags().StringVarP(&sendTemplate, "template", "t", "welcome_email", "template name")
	sendCmd.Flags().StringArrayVar(&sendVars, "var", nil, "template variable key=value (repeatable)")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries")
}

// Configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage CLI configuration settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  "Initialize CLI configuration with interactive prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return initializeConfig(cmd.InOrStdin(), cmd.OutOrStdout(), filepath.Join(home, ".courier-cli.yaml"))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display current CLI configuration settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout())
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func initializeConfig(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintln(out, "Courier CLI Configuration Setup")
	fmt.Fprintln(out, "===============================")

	var config Config

	fmt.Fprint(out, "Courier API URL [http://localhost:8080]: ")
	var url string
	_, _ = fmt.Fscanln(in, &url)
	if url == "" {
		url = "http://localhost:8080"
	}
	config.APIURL = url

	fmt.Fprint(out, "API Token: ")
	var token string
	_, _ = fmt.Fscanln(in, &token)
	config.APIToken = token

	viper.Set("api_url", config.APIURL)
	viper.Set("api_token", config.APIToken)

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func showConfig(out io.Writer) error {
	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintf(out, "API URL: %s\n", apiURL)
	fmt.Fprintf(out, "API Token: %s\n", maskToken(apiToken))

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	}

	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// formatJSON writes data indented when -o json is selected.
func formatJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func logVerbose(format string, args ...any) {
	if verbose {
		log.Printf("[VERBOSE] "+format, args...)
	}
}
