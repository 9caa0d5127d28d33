package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/chirichan/rice"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chirichan/pwdconv/internal/entities"
	"github.com/chirichan/pwdconv/version"
)

type PwdConvCLI struct {
	Logger *slog.Logger
}

func (m *PwdConvCLI) Root(cmd *cobra.Command, args []string) {
	if v, _ := cmd.Flags().GetBool("version"); v {
		fmt.Fprintf(cmd.OutOrStdout(), "pwdconv version is %s\n", version.Version)
		return
	}
	_ = cmd.Help()
}

// LoadEnv reads a .env file from the working directory if there is one.
func (m *PwdConvCLI) LoadEnv(cmd *cobra.Command, args []string) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		m.Logger.Warn("load .env", "err", err)
	}
}

func (m *PwdConvCLI) Clipperz2LastPass(cmd *cobra.Command, args []string) error {
	inJSON, _ := cmd.Flags().GetString("injson")
	fromClipboard, _ := cmd.Flags().GetBool("clipboard")
	outCSV, _ := cmd.Flags().GetString("outcsv")
	verbose, _ := cmd.Flags().GetBool("verbose")
	typeKey, _ := cmd.Flags().GetString("type-key")
	noVerify, _ := cmd.Flags().GetBool("no-verify")
	encrypt, _ := cmd.Flags().GetBool("encrypt")
	key, _ := cmd.Flags().GetString("key")
	begin := time.Now()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	m.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	m.Logger.Info("start", "cmd", cmd.CommandPath(), "version", version.Version, "go", runtime.Version())

	// fail before doing any work if the output cannot be encrypted
	if encrypt {
		k, err := lookupKey(key)
		if err != nil {
			return err
		}
		key = k
	}

	var data []byte
	if fromClipboard {
		text, err := clipboard.ReadAll()
		if err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		data = []byte(text)
		m.Logger.Info("read input", "from", "clipboard")
	} else {
		if !rice.PathExists(inJSON) {
			return fmt.Errorf("input file not found: %s", inJSON)
		}
		b, err := os.ReadFile(inJSON)
		if err != nil {
			return fmt.Errorf("read input %s: %w", inJSON, err)
		}
		data = b
		m.Logger.Info("read input", "injson", inJSON, "bytes", len(data))
	}

	cards, err := entities.DecodeClipperz(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	m.Logger.Info("decoded cards", "count", len(cards))

	rows, err := newCardMapper(m.Logger, typeKey).mapCards(cards)
	if err != nil {
		return err
	}

	outCSV, err = filepath.Abs(outCSV)
	if err != nil {
		return err
	}
	if err := saveLastPassCSV(outCSV, rows); err != nil {
		return err
	}
	if !noVerify {
		if err := verifyLastPassCSV(outCSV, len(rows)); err != nil {
			return err
		}
	}
	if encrypt {
		if outCSV, err = encryptFile(key, outCSV); err != nil {
			return err
		}
	}
	m.Logger.Info("convert success", "rows", len(rows), "output", outCSV, "cost", time.Since(begin))
	return nil
}

func (m *PwdConvCLI) DecryptFile(cmd *cobra.Command, args []string) error {
	key, _ := cmd.Flags().GetString("key")
	file, _ := cmd.Flags().GetString("file")
	begin := time.Now()

	key, err := lookupKey(key)
	if err != nil {
		return err
	}
	output, err := decryptFile(key, file)
	if err != nil {
		return err
	}
	m.Logger.Info("decrypt success", "output", output, "cost", time.Since(begin))
	return nil
}

func (m *PwdConvCLI) GenKey(cmd *cobra.Command, args []string) error {
	key, err := rice.RandomHexString(32)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "AES key:\n\n%s\n\nKeep it safe, it is needed to decrypt the output. Pass it with --key or set %s.\n", key, AesKeyEnv)
	return nil
}

func NewCLI() *cobra.Command {
	muCLI := &PwdConvCLI{Logger: slog.Default()}

	rootCmd := &cobra.Command{
		Use:              "pwdconv",
		Short:            "Convert password manager exports",
		Run:              muCLI.Root,
		PersistentPreRun: muCLI.LoadEnv,
		SilenceUsage:     true,
	}
	rootCmd.Flags().BoolP("version", "v", false, "version")

	c2lCmd := &cobra.Command{
		Use:     "clipperz2lastpass",
		Aliases: []string{"c2l"},
		Short:   "Convert a Clipperz JSON export to a LastPass CSV file.",
		Args:    cobra.NoArgs,
		RunE:    muCLI.Clipperz2LastPass,
	}
	c2lCmd.Flags().StringP("injson", "i", "", "input Clipperz JSON file")
	c2lCmd.Flags().BoolP("clipboard", "c", false, "read the Clipperz JSON from the clipboard")
	c2lCmd.Flags().StringP("outcsv", "o", "", "output LastPass CSV file")
	c2lCmd.Flags().BoolP("verbose", "V", false, "log every card")
	c2lCmd.Flags().String("type-key", DefaultTypeKey, "field attribute holding the URL/PWD/TXT type tag")
	c2lCmd.Flags().Bool("no-verify", false, "do not read the written CSV back")
	c2lCmd.Flags().BoolP("encrypt", "e", false, "encrypt the output to <outcsv>"+Aes256Suffix)
	c2lCmd.Flags().StringP("key", "k", "", "AES key for --encrypt, defaults to env "+AesKeyEnv)
	c2lCmd.MarkFlagsOneRequired("injson", "clipboard")
	c2lCmd.MarkFlagsMutuallyExclusive("injson", "clipboard")
	_ = c2lCmd.MarkFlagRequired("outcsv")

	decryptCmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an encrypted LastPass CSV file",
		Args:  cobra.NoArgs,
		RunE:  muCLI.DecryptFile,
	}
	decryptCmd.Flags().StringP("key", "k", "", "AES key, defaults to env "+AesKeyEnv)
	decryptCmd.Flags().StringP("file", "f", "", "file to decrypt, must end with "+Aes256Suffix)
	_ = decryptCmd.MarkFlagRequired("file")

	genKeyCmd := &cobra.Command{
		Use:   "genkey",
		Short: "Generate an AES256 key",
		Args:  cobra.NoArgs,
		RunE:  muCLI.GenKey,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pwdconv %s\n", version.Version)
		},
	}

	rootCmd.AddCommand(
		c2lCmd,
		decryptCmd,
		genKeyCmd,
		versionCmd,
	)
	return rootCmd
}
