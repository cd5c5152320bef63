// Package config defines the cobra-based flag sets for this module's
// three entry points (cmd/server, cmd/client, cmd/sim), replacing the
// teacher's bare flag.String calls with the pack's cobra convention.
package config

import "github.com/spf13/cobra"

// ServerConfig configures the TCP front end in cmd/server.
type ServerConfig struct {
	Address    string
	Port       int
	MatcherTag string
}

// BindServerFlags attaches the server's flags to cmd and returns the
// struct they populate once cmd.Execute runs.
func BindServerFlags(cmd *cobra.Command) *ServerConfig {
	cfg := &ServerConfig{}
	cmd.Flags().StringVar(&cfg.Address, "address", "0.0.0.0", "listen address")
	cmd.Flags().IntVar(&cfg.Port, "port", 9001, "listen port")
	cmd.Flags().StringVar(&cfg.MatcherTag, "matcher", "FIFO", "matcher algorithm: FIFO or PRO")
	return cfg
}

// ClientConfig configures a single request from cmd/client.
type ClientConfig struct {
	ServerAddr string
	Action     string // "place", "cancel", or "log"
	ClOrdID    string
	Symbol     string
	Side       string // "Buy" or "Sell" (case-sensitive; anything else is Sell)
	Price      float64
	Qty        uint32
}

// BindClientFlags attaches the client's flags to cmd.
func BindClientFlags(cmd *cobra.Command) *ClientConfig {
	cfg := &ClientConfig{}
	cmd.Flags().StringVar(&cfg.ServerAddr, "server", "127.0.0.1:9001", "address of the exchange server")
	cmd.Flags().StringVar(&cfg.Action, "action", "place", "action to perform: place, cancel, or log")
	cmd.Flags().StringVar(&cfg.ClOrdID, "cl-ord-id", "", "client order id (required for place and cancel)")
	cmd.Flags().StringVar(&cfg.Symbol, "symbol", "AAPL", "ticker symbol")
	cmd.Flags().StringVar(&cfg.Side, "side", "Buy", "order side: Buy or Sell")
	cmd.Flags().Float64Var(&cfg.Price, "price", 100.0, "limit price")
	cmd.Flags().Uint32Var(&cfg.Qty, "qty", 10, "order quantity")
	return cfg
}

// SimConfig configures the channel ping-pong simulator in cmd/sim.
type SimConfig struct {
	InputFile  string
	MatcherTag string
}

// BindSimFlags attaches the simulator's flags to cmd.
func BindSimFlags(cmd *cobra.Command) *SimConfig {
	cfg := &SimConfig{}
	cmd.Flags().StringVar(&cfg.InputFile, "input", "", "optional order text file to seed the book from")
	cmd.Flags().StringVar(&cfg.MatcherTag, "matcher", "FIFO", "matcher algorithm: FIFO or PRO")
	return cfg
}
