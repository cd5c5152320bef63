package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"matchengine/internal/config"
	"matchengine/internal/domain"
	"matchengine/internal/transport"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "matchengine-client",
		Short: "Sends one order/cancel/log request to the matching engine server",
	}
	cfg := config.BindClientFlags(rootCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cfg)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("client exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.ClientConfig) error {
	conn, err := net.Dial("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.ServerAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", cfg.ServerAddr)

	go readReports(conn)

	switch strings.ToLower(cfg.Action) {
	case "place":
		if cfg.ClOrdID == "" {
			return fmt.Errorf("--cl-ord-id is required for action=place")
		}
		msg := transport.NewOrderMessage{
			Symbol:    cfg.Symbol,
			OrderType: domain.Limit,
			Qty:       cfg.Qty,
			Price:     cfg.Price,
			Side:      domain.SideFromString(cfg.Side),
			ClOrdID:   cfg.ClOrdID,
		}
		if _, err := conn.Write(transport.EncodeNewOrder(msg)); err != nil {
			return fmt.Errorf("sending order: %w", err)
		}
		fmt.Printf("-> Sent %s order: %s %d @ %.4f (%s)\n", cfg.Side, cfg.Symbol, cfg.Qty, cfg.Price, cfg.ClOrdID)

	case "cancel":
		if cfg.ClOrdID == "" {
			return fmt.Errorf("--cl-ord-id is required for action=cancel")
		}
		if _, err := conn.Write(transport.EncodeCancelOrder(transport.CancelOrderMessage{ClOrdID: cfg.ClOrdID})); err != nil {
			return fmt.Errorf("sending cancel: %w", err)
		}
		fmt.Printf("-> Sent cancel request for %s\n", cfg.ClOrdID)

	case "log":
		if _, err := conn.Write(transport.EncodeLogBook()); err != nil {
			return fmt.Errorf("sending log request: %w", err)
		}
		fmt.Println("-> Sent log request")

	default:
		return fmt.Errorf("unknown action %q", cfg.Action)
	}

	fmt.Println("Listening for reports... (Ctrl+C to exit)")
	select {}
}

// readReports continuously reads and prints Report messages from the
// server connection.
func readReports(conn net.Conn) {
	const fixedHeaderLen = 1 + 1 + 1 + 4 + 4 + 4 + 8 + 4 + 2 + 2 + 4
	for {
		headerBuf := make([]byte, fixedHeaderLen)
		if _, err := io.ReadFull(conn, headerBuf); err != nil {
			if err != io.EOF {
				log.Error().Err(err).Msg("connection lost")
			}
			return
		}

		report, clOrdIDLen, secondaryLen, errLen, err := transport.ParseReportHeader(headerBuf)
		if err != nil {
			log.Error().Err(err).Msg("failed parsing report header")
			return
		}

		trailer := make([]byte, clOrdIDLen+secondaryLen+errLen)
		if len(trailer) > 0 {
			if _, err := io.ReadFull(conn, trailer); err != nil {
				log.Error().Err(err).Msg("failed reading report trailer")
				return
			}
		}
		report.ClOrdID = string(trailer[:clOrdIDLen])
		report.SecondaryClOrdID = string(trailer[clOrdIDLen : clOrdIDLen+secondaryLen])
		report.Err = string(trailer[clOrdIDLen+secondaryLen:])

		if report.MessageType == transport.ErrorReport {
			fmt.Printf("\n[SERVER ERROR] %s\n", report.Err)
			continue
		}
		fmt.Printf("\n[EXECUTION] %s %s | Qty: %d | Price: %.4f | CumQty: %d | LeavesQty: %d | Status: %s | ClOrdID: %s | vs: %s\n",
			report.Side, report.Symbol, report.Qty, report.Price, report.CumQty, report.LeavesQty, report.Status, report.ClOrdID, report.SecondaryClOrdID)
	}
}
