package gameserver_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/command"
	"github.com/cory-johannsen/aviary/internal/game/idle"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
	"github.com/cory-johannsen/aviary/internal/gameserver"
	"github.com/cory-johannsen/aviary/internal/save"
)

type consoleFixture struct {
	engine  *gameserver.Engine
	console *gameserver.Console
	backend *save.MemoryBackend
	out     *bytes.Buffer
}

func newConsole(t testing.TB) *consoleFixture {
	t.Helper()
	backend := save.NewMemoryBackend()
	e := newEngine(t, backend)
	arena := gameserver.NewArena(e, nil, 20*time.Millisecond, combat.NewManualClock(time.Unix(0, 0)), zap.NewNop())
	out := &bytes.Buffer{}
	c := gameserver.NewConsole(e, arena, command.DefaultRegistry(), out, gameserver.Palette{}, zaptest.NewLogger(t))
	return &consoleFixture{engine: e, console: c, backend: backend, out: out}
}

// run executes line and returns only the output it produced.
func (f *consoleFixture) run(line string) string {
	f.out.Reset()
	f.console.Handle(context.Background(), line)
	return f.out.String()
}

func TestConsole_HelpAndUnknown(t *testing.T) {
	f := newConsole(t)
	help := f.run("help")
	for _, c := range command.BuiltinCommands() {
		assert.Contains(t, help, c.Name)
	}
	assert.Contains(t, f.run("teleport"), `Unknown command "teleport"`)
	assert.Empty(t, f.run("   "))
}

func TestConsole_StatusOfFreshGame(t *testing.T) {
	f := newConsole(t)
	out := f.run("status")
	assert.Contains(t, out, "500 Coins, 50 Feathers")
	assert.Contains(t, out, "Zone: 1")
	assert.Contains(t, out, "Unlocked: none")
	assert.Contains(t, f.run("roster"), "You have no creatures")
}

func TestConsole_CatchAndRoster(t *testing.T) {
	f := newConsole(t)
	assert.Contains(t, f.run("catch"), "kestrel")
	out := f.run("catch Kestrel")
	assert.Contains(t, out, "Kestrel")

	st := f.engine.Snapshot()
	require.Len(t, st.Creatures, 1)
	assert.Equal(t, 450, st.Wallet.Coins)
	assert.Equal(t, []string{st.Creatures[0].ID}, st.Party)

	roster := f.run("r")
	assert.Contains(t, roster, " 1. ")
	assert.Contains(t, roster, "[party]")
	assert.Contains(t, f.run("catch dodo"), "Nothing by that name.")
}

func TestConsole_ResolvesCreatureByIndexAndPrefix(t *testing.T) {
	f := newConsole(t)
	f.run("catch kestrel")
	f.run("catch barn_owl")
	st := f.engine.Snapshot()
	require.Len(t, st.Creatures, 2)

	assert.Equal(t, "Done.\n", f.run("party 2"))
	assert.Equal(t, []string{st.Creatures[1].ID}, f.engine.Snapshot().Party)

	f.run("party " + st.Creatures[0].ID[:6])
	assert.Equal(t, []string{st.Creatures[0].ID}, f.engine.Snapshot().Party)
}

func TestConsole_CraftAndEquip(t *testing.T) {
	f := newConsole(t)
	f.run("catch kestrel")
	assert.Contains(t, f.run("craft beak"), "beak")
	assert.Contains(t, f.run("craft wings"), "not a valid choice")

	st := f.engine.Snapshot()
	require.Len(t, st.Gear, 1)
	assert.Contains(t, f.run("items"), st.Gear[0].ID[:8])

	f.run("equip 1 1")
	st = f.engine.Snapshot()
	assert.Equal(t, st.Creatures[0].ID, st.Gear[0].OwnerID)

	assert.Contains(t, f.run("sell "+st.Gear[0].ID), "conflicts")
	f.run("unequip 1 beak")
	assert.Contains(t, f.run("sell "+st.Gear[0].ID[:8]), "feathers")
	assert.Empty(t, f.engine.Snapshot().Gear)
}

func TestConsole_LockedAndInsufficient(t *testing.T) {
	f := newConsole(t)
	assert.Contains(t, f.run("gem"), "not unlocked")
	f.run("craft beak")
	f.run("craft talons")
	assert.Equal(t, 0, f.engine.Snapshot().Wallet.Feathers)
	assert.Contains(t, f.run("craft beak"), "cannot afford")
	assert.Contains(t, f.run("upgrade forge"), "cannot afford")
	assert.Contains(t, f.run("upgrade teleporter"), "Nothing by that name.")
}

func TestConsole_UseConsumable(t *testing.T) {
	f := newConsole(t)
	assert.Contains(t, f.run("use coin_rush"), "Usage: use")
	assert.Contains(t, f.run("use coin_rush rare"), "Nothing by that name.")

	_, err := f.engine.Apply(context.Background(), "seed", func(_ *command.Env, st *player.State) (*player.State, command.Result) {
		next := st.Clone()
		next.Consumables = next.Consumables.Add(inventory.CoinRush, rarity.Rare, 1)
		return next, command.Result{}
	})
	require.NoError(t, err)
	f.run("use coin_rush rare")
	assert.Equal(t, 600, f.engine.Snapshot().Buffs[inventory.CoinRush].RemainingTicks)
	assert.Contains(t, f.run("status"), "coin_rush")
}

func TestConsole_BattleFlow(t *testing.T) {
	f := newConsole(t)
	assert.Contains(t, f.run("battle"), "Select a party first")
	assert.Contains(t, f.run("move peck"), "not in a battle")
	assert.Contains(t, f.run("flee"), "not in a battle")

	f.run("catch kestrel")
	assert.Contains(t, f.run("battle 3"), "not unlocked")
	out := f.run("battle")
	if strings.Contains(out, "Defeat.") || strings.Contains(out, "Victory!") {
		t.Skip("opening move resolved the battle")
	}
	assert.Contains(t, out, "Battle zone 1")
	assert.Contains(t, out, "moves:")
	assert.Contains(t, f.run("battle"), "already in progress")
	assert.Contains(t, f.run("move soar"), "You can't do that")
	assert.Contains(t, f.run("reset confirm"), "Finish or flee")
	assert.Contains(t, f.run("flee"), "counts as a loss")
	assert.Equal(t, 1, f.engine.Snapshot().Stats["battles_lost"])
}

func TestConsole_SaveResetQuit(t *testing.T) {
	f := newConsole(t)
	assert.Equal(t, "Saved.\n", f.run("save"))
	_, err := f.backend.Get(context.Background(), testSlot)
	require.NoError(t, err)

	f.run("catch kestrel")
	assert.Contains(t, f.run("reset"), "reset confirm")
	assert.Len(t, f.engine.Snapshot().Creatures, 1)
	assert.Contains(t, f.run("reset confirm"), "fresh start")
	assert.Empty(t, f.engine.Snapshot().Creatures)

	f.out.Reset()
	assert.True(t, f.console.Handle(context.Background(), "quit"))
	assert.Contains(t, f.out.String(), "Goodbye.")
	_, err = f.backend.Get(context.Background(), testSlot)
	assert.NoError(t, err)
}

func TestConsole_RunStopsOnQuitAndEOF(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newConsole(t)
	require.NoError(t, f.console.Run(ctx, strings.NewReader("status\nquit\nroster\n")))
	out := f.out.String()
	assert.Contains(t, out, "Welcome to the Aviary")
	assert.Contains(t, out, "Goodbye.")
	assert.NotContains(t, out, "You have no creatures")

	g := newConsole(t)
	require.NoError(t, g.console.Run(ctx, strings.NewReader("status\n")))
	assert.Contains(t, g.out.String(), "Wallet:")
}

func TestConsole_NotifyPrintsFinds(t *testing.T) {
	f := newConsole(t)
	f.console.Notify(idle.Report{Ticks: 1, Coins: 3})
	assert.Empty(t, f.out.String())
	f.console.Notify(idle.Report{Ticks: 1, Feathers: 2, Expired: []inventory.ConsumableType{inventory.HuntFrenzy}})
	assert.Equal(t, "[hunt] +2 feathers; hunt_frenzy wore off\n", f.out.String())
}

func TestProperty_Console_AnyInputIsHandled(t *testing.T) {
	names := make([]string, 0)
	for _, c := range command.BuiltinCommands() {
		if c.Handler != command.HandlerQuit && c.Handler != command.HandlerReset {
			names = append(names, c.Name)
		}
	}
	rapid.Check(t, func(rt *rapid.T) {
		f := newConsole(t)
		for range rapid.IntRange(1, 8).Draw(rt, "lines") {
			name := rapid.SampledFrom(names).Draw(rt, "command")
			args := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9_]{0,8}`), 0, 3).Draw(rt, "args")
			out := f.run(name + " " + strings.Join(args, " "))
			if strings.ContainsRune(out, '\033') {
				rt.Fatalf("plain palette emitted an escape sequence: %q", out)
			}
			st := f.engine.Snapshot()
			if st.Wallet.Coins < 0 || st.Wallet.Feathers < 0 {
				rt.Fatalf("negative wallet after %q: %+v", name, st.Wallet)
			}
		}
	})
}
