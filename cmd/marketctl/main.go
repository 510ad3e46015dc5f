package main

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/clearing/models"
	"github.com/clearhouse/options-ledger/src/clearing/services"
	"github.com/clearhouse/options-ledger/src/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "marketctl",
	Short: "Inspect option clearing markets",
}

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List the configured markets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := services.LoadMarketsConfig(configPath)
		if err != nil {
			return err
		}

		tokens := services.BuildTokens(cfg)
		registry := services.NewMarketRegistry(assets.Address("admin"), nil)
		if err := registry.CreateMarketsFromConfig(cfg, tokens); err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Market", "Underlying", "Strike", "Base", "Quote", "Expiry", "Expired"})

		for _, ledger := range registry.Markets() {
			key := ledger.Key()
			table.Append([]string{
				utils.ShortHash(ledger.Hash(), 12),
				key.Underlying.Symbol(),
				key.Strike.Symbol(),
				key.Base.String(),
				key.Quote.String(),
				key.Expiry.UTC().Format(time.RFC3339),
				fmt.Sprintf("%t", ledger.Expired()),
			})
		}

		table.Render()
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Compute the identity hash of a market key",
	RunE: func(cmd *cobra.Command, args []string) error {
		underlying, _ := cmd.Flags().GetString("underlying")
		strike, _ := cmd.Flags().GetString("strike")
		baseStr, _ := cmd.Flags().GetString("base")
		quoteStr, _ := cmd.Flags().GetString("quote")
		expiryStr, _ := cmd.Flags().GetString("expiry")

		base, ok := new(big.Int).SetString(baseStr, 10)
		if !ok {
			return fmt.Errorf("invalid base %q", baseStr)
		}

		quote, ok := new(big.Int).SetString(quoteStr, 10)
		if !ok {
			return fmt.Errorf("invalid quote %q", quoteStr)
		}

		expiry, err := time.Parse(time.RFC3339, expiryStr)
		if err != nil {
			return fmt.Errorf("invalid expiry %q: %w", expiryStr, err)
		}

		key := models.MarketKey{
			Underlying: assets.NewBaseToken(underlying, underlying, 18),
			Strike:     assets.NewBaseToken(strike, strike, 18),
			Base:       base,
			Quote:      quote,
			Expiry:     expiry,
		}

		hash, err := key.Hash()
		if err != nil {
			return err
		}

		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "markets.yaml", "path to the markets config file")

	hashCmd.Flags().String("underlying", "", "underlying asset symbol")
	hashCmd.Flags().String("strike", "", "strike asset symbol")
	hashCmd.Flags().String("base", "", "base amount in wei")
	hashCmd.Flags().String("quote", "", "quote amount in wei")
	hashCmd.Flags().String("expiry", "", "expiry time, RFC3339")

	rootCmd.AddCommand(marketsCmd)
	rootCmd.AddCommand(hashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
