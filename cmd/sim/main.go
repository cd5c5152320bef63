// cmd/sim is a channel-driven REPL that mirrors the original's
// start_user/start_matcher ping-pong: ownership of the order book
// alternates between a "user" goroutine (prompts for the next order)
// and a "matcher" goroutine (runs one match cycle and prints fills),
// handed back and forth over two channels.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"matchengine/internal/book"
	"matchengine/internal/config"
	"matchengine/internal/domain"
	"matchengine/internal/loader"
	"matchengine/internal/matcher"
	"matchengine/internal/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "matchengine-sim",
		Short: "Interactive order book matching simulator",
	}
	cfg := config.BindSimFlags(rootCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cfg)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("sim exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.SimConfig) error {
	toMatcher := make(chan *book.OrderBook)
	toUser := make(chan *book.OrderBook)

	m := matcher.New(cfg.MatcherTag)
	go startMatcher(m, toMatcher, toUser)
	startUser(cfg.InputFile, toMatcher, toUser)
	return nil
}

// startUser loads the seed book (if any), hands it to the matcher,
// then loops: print the book it gets back, prompt for one more order,
// add it, and hand the book off again. Typing "q" exits.
func startUser(inputFile string, toMatcher chan<- *book.OrderBook, fromMatcher <-chan *book.OrderBook) {
	lines, err := loader.ReadLines(inputFile)
	if err != nil {
		log.Error().Err(err).Str("file", inputFile).Msg("failed reading input file")
	}
	ob := loader.BuildOrderBook(lines)
	toMatcher <- ob

	reader := bufio.NewReader(os.Stdin)
	for {
		ob := <-fromMatcher
		printBook(ob)

		fmt.Println(`Enter an order ("<cl_ord_id> <symbol> <qty> <price> <side(Buy|Sell)>") or "q" to quit`)
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Error().Err(err).Msg("failed reading stdin")
			return
		}
		line = strings.TrimSpace(line)
		if line == "q" {
			return
		}
		if line != "" {
			order := loader.ParseLine(line)
			if err := ob.Add(order); err != nil {
				log.Error().Err(err).Msg("rejected order")
			}
		}
		toMatcher <- ob
	}
}

// startMatcher runs one match cycle per book it receives, prints the
// resulting fills, and hands the (now mutated) book back.
func startMatcher(m matcher.Matcher, fromUser <-chan *book.OrderBook, toUser chan<- *book.OrderBook) {
	for ob := range fromUser {
		fills := m.Match(ob)
		if len(fills) > 0 {
			report.PrintFills(os.Stdout, fills)
		}
		toUser <- ob
	}
}

func printBook(ob *book.OrderBook) {
	buys := ob.OrdersFor(domain.Buy)
	fmt.Println("--- Resting buy orders ---")
	for _, key := range ob.OrderedKeys(domain.Buy) {
		for _, o := range buys[key] {
			fmt.Println(o.String())
		}
	}

	sells := ob.OrdersFor(domain.Sell)
	fmt.Println("--- Resting sell orders ---")
	for _, key := range ob.OrderedKeys(domain.Sell) {
		for _, o := range sells[key] {
			fmt.Println(o.String())
		}
	}
}
