// cmd/simulate/main.go

// simulate seats a table of bots and plays one full match in the terminal.
// Handy for eyeballing the bot policy and the scoring without a client.
package main

import (
	"flag"
	"math/rand"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"

	"github.com/nothxbot/nothx/internal/game"
	"github.com/nothxbot/nothx/internal/messenger"
	"github.com/nothxbot/nothx/internal/session"
)

// termMessenger renders match notifications with pterm. All seats are bots,
// so the private summary and prompt paths never fire.
type termMessenger struct{}

func (termMessenger) SendText(_, text string) {
	pterm.Info.Println(text)
}

func (termMessenger) BroadcastText(_ *game.Game, text string) {
	pterm.DefaultSection.Println(text)
}

func (termMessenger) AnnounceLobby(g *game.Game) {
	pterm.Info.Println(messenger.FormatLobby(g))
}

func (termMessenger) AnnounceAction(_ *game.Game, seat *game.Player, move game.Move, card, pot int) {
	line := messenger.FormatAction(seat, move, card, pot)
	if move == game.MoveTake {
		pterm.FgLightYellow.Println(line)
	} else {
		pterm.FgGray.Println(line)
	}
}

func (termMessenger) SendGameSummary(*game.Game, *game.Player) {}
func (termMessenger) RequestAction(*game.Game, *game.Player)   {}

func (termMessenger) AnnounceScores(g *game.Game, scores []int) {
	rows := pterm.TableData{{"Seat", "Player", "Hand", "Tokens", "Score"}}
	for i, p := range g.Players {
		rows = append(rows, []string{
			strconv.Itoa(i),
			p.Name,
			pterm.Sprintf("%v", p.Hand),
			strconv.Itoa(p.Tokens),
			strconv.Itoa(scores[i]),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (termMessenger) AnnounceWinner(_ *game.Game, winner *game.Player) {
	pterm.Success.Printfln("Game over. %s is the winner!", winner.Name)
}

var _ messenger.Messenger = termMessenger{}

func main() {
	bots := flag.Int("bots", 3, "number of bot seats (3-7)")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	pterm.DefaultHeader.Printfln("No Thanks! simulation: %d bots, seed %d", *bots, *seed)

	mgr := session.NewManager(termMessenger{}, logger)
	if err := mgr.RunBotMatch(*bots, rng); err != nil {
		pterm.Error.Printfln("simulation failed: %v", err)
	}
}
