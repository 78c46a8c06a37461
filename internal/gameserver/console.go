package gameserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/command"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/idle"
	"github.com/cory-johannsen/aviary/internal/game/inventory"
	"github.com/cory-johannsen/aviary/internal/game/player"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
)

// Prompt is written before every console read.
const Prompt = "> "

// Console is the line-oriented front end. It parses each line through the
// command registry and runs it against the engine or the arena.
type Console struct {
	engine   *Engine
	arena    *Arena
	registry *command.Registry
	palette  Palette
	logger   *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a Console writing to out.
//
// Precondition: engine, arena, registry, out and logger must be non-nil.
func NewConsole(engine *Engine, arena *Arena, registry *command.Registry, out io.Writer, palette Palette, logger *zap.Logger) *Console {
	if engine == nil || arena == nil || registry == nil || out == nil || logger == nil {
		panic("gameserver.NewConsole: all arguments must be non-nil")
	}
	return &Console{engine: engine, arena: arena, registry: registry, palette: palette, logger: logger, out: out}
}

func (c *Console) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, s)
}

// Notify prints the notable parts of an idle report.
func (c *Console) Notify(rep idle.Report) {
	if s := RenderReport(c.palette, rep); s != "" {
		c.write(s)
	}
}

// Run reads commands from in until EOF, quit, or ctx is cancelled.
//
// Postcondition: returns nil on EOF, quit and cancellation; read errors are
// returned wrapped. The state is saved before returning on quit.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	c.write(c.palette.Paint(BrightCyan, "Welcome to the Aviary. Type help for commands.") + "\n" + Prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading console: %w", err)
					}
				default:
				}
				return nil
			}
			if c.Handle(ctx, line) {
				return nil
			}
			c.write(Prompt)
		}
	}
}

// Handle executes one console line and writes its output.
//
// Postcondition: returns true when the line asked to quit.
func (c *Console) Handle(ctx context.Context, line string) bool {
	out, quit := c.dispatch(ctx, command.Parse(line))
	if out != "" {
		c.write(out)
	}
	return quit
}

func (c *Console) dispatch(ctx context.Context, in command.ParseResult) (string, bool) {
	if in.Command == "" {
		return "", false
	}
	cmd, ok := c.registry.Resolve(in.Command)
	if !ok {
		return fmt.Sprintf("Unknown command %q. Type help for a list.\n", in.Command), false
	}
	env := c.engine.Env()
	st := c.engine.Snapshot()
	p := c.palette

	switch cmd.Handler {
	case command.HandlerStatus:
		return RenderStatus(p, st, env.Tables), false
	case command.HandlerRoster:
		return RenderRoster(p, st), false
	case command.HandlerItems:
		return RenderItems(p, st), false
	case command.HandlerHelp:
		return c.registry.Help(), false

	case command.HandlerCatch:
		if in.Arg(0) == "" {
			return c.usage(cmd) + "species: " + speciesList(env) + "\n", false
		}
		id := resolveSpecies(env, in.Arg(0))
		mult := in.FloatArg(1, 1)
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.Catch(env, st, id, mult)
		}), false
	case command.HandlerRelease:
		id := resolveCreature(st, in.Arg(0))
		return c.apply(ctx, cmd, func(_ *command.Env, st *player.State) (*player.State, command.Result) {
			return command.Release(st, id)
		}), false
	case command.HandlerParty:
		if len(in.Args) == 0 {
			return c.usage(cmd), false
		}
		ids := make([]string, len(in.Args))
		for i, a := range in.Args {
			ids[i] = resolveCreature(st, a)
		}
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.SelectParty(env, st, ids)
		}), false
	case command.HandlerHunt:
		id := resolveCreature(st, in.Arg(0))
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.AssignHunting(env, st, id)
		}), false
	case command.HandlerRecall:
		id := resolveCreature(st, in.Arg(0))
		return c.apply(ctx, cmd, func(_ *command.Env, st *player.State) (*player.State, command.Result) {
			return command.Recall(st, id)
		}), false
	case command.HandlerAllocate:
		id := resolveCreature(st, in.Arg(0))
		stat := creature.Stat(strings.ToLower(in.Arg(1)))
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.AllocateStat(env, st, id, stat)
		}), false

	case command.HandlerCraft:
		slot := creature.Slot(strings.ToLower(in.Arg(0)))
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.CraftGear(env, st, slot)
		}), false
	case command.HandlerCraftGem:
		return c.apply(ctx, cmd, command.CraftGem), false
	case command.HandlerEquip:
		cid, gid := resolveCreature(st, in.Arg(0)), resolveGear(st, in.Arg(1))
		return c.apply(ctx, cmd, func(_ *command.Env, st *player.State) (*player.State, command.Result) {
			return command.Equip(st, cid, gid)
		}), false
	case command.HandlerUnequip:
		cid := resolveCreature(st, in.Arg(0))
		slot := creature.Slot(strings.ToLower(in.Arg(1)))
		return c.apply(ctx, cmd, func(_ *command.Env, st *player.State) (*player.State, command.Result) {
			return command.Unequip(st, cid, slot)
		}), false
	case command.HandlerSocket:
		gid, gemID := resolveGear(st, in.Arg(0)), resolveGem(st, in.Arg(1))
		index := in.IntArg(2, 0) - 1
		if in.Arg(2) == "" {
			if g, ok := st.GearByID(gid); ok {
				index = g.FreeSocket()
			}
		}
		return c.apply(ctx, cmd, func(_ *command.Env, st *player.State) (*player.State, command.Result) {
			return command.Socket(st, gid, gemID, index)
		}), false
	case command.HandlerUnsocket:
		gid := resolveGear(st, in.Arg(0))
		index := in.IntArg(1, 1) - 1
		return c.apply(ctx, cmd, func(_ *command.Env, st *player.State) (*player.State, command.Result) {
			return command.Unsocket(st, gid, index)
		}), false

	case command.HandlerSell:
		if gid := resolveGear(st, in.Arg(0)); gid != in.Arg(0) || hasGear(st, gid) {
			return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
				return command.SellGear(env, st, gid)
			}), false
		}
		gemID := resolveGem(st, in.Arg(0))
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.SellGem(env, st, gemID)
		}), false
	case command.HandlerUse:
		kind := inventory.ConsumableType(strings.ToLower(in.Arg(0)))
		tier, err := rarity.ParseTier(in.Arg(1))
		if !kind.Valid() || err != nil {
			return c.usage(cmd), false
		}
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.UseConsumable(env, st, kind, tier)
		}), false
	case command.HandlerUpgrade:
		u := balance.Upgrade(strings.ToLower(in.Arg(0)))
		return c.apply(ctx, cmd, func(env *command.Env, st *player.State) (*player.State, command.Result) {
			return command.PurchaseUpgrade(env, st, u)
		}), false

	case command.HandlerBattle:
		return c.battle(ctx, in.IntArg(0, 0)), false
	case command.HandlerMove:
		return c.move(ctx, in), false
	case command.HandlerFlee:
		_, err := c.arena.Forfeit(ctx)
		if errors.Is(err, ErrNoBattle) {
			return "You are not in a battle.\n", false
		}
		if err != nil {
			c.logger.Warn("persisting forfeit", zap.Error(err))
		}
		return "You flee. The battle counts as a loss.\n", false

	case command.HandlerSave:
		if err := c.engine.Save(ctx); err != nil {
			c.logger.Error("manual save failed", zap.Error(err))
			return "Save failed: " + err.Error() + "\n", false
		}
		return "Saved.\n", false
	case command.HandlerReset:
		if in.Arg(0) != "confirm" {
			return "This erases your save. Type: reset confirm\n", false
		}
		if c.arena.Active() != nil {
			return "Finish or flee the battle first.\n", false
		}
		if err := c.engine.Reset(ctx); err != nil {
			c.logger.Error("reset failed", zap.Error(err))
			return "Reset failed: " + err.Error() + "\n", false
		}
		return "A fresh start.\n", false
	case command.HandlerQuit:
		if err := c.engine.Save(ctx); err != nil {
			c.logger.Error("final save failed", zap.Error(err))
		}
		return "Goodbye.\n", true
	}
	return fmt.Sprintf("%q is not available here.\n", cmd.Name), false
}

func (c *Console) usage(cmd *command.Command) string {
	return fmt.Sprintf("Usage: %s %s\n", cmd.Name, cmd.Usage)
}

// apply runs a reducer through the engine and renders its outcome.
func (c *Console) apply(ctx context.Context, cmd *command.Command, fn Reducer) string {
	res, err := c.engine.Apply(ctx, cmd.Handler, fn)
	if err != nil {
		c.logger.Warn("persisting command", zap.String("command", cmd.Name), zap.Error(err))
	}
	if !res.OK() {
		return RenderReason(res.Reason) + "\n"
	}
	return RenderResult(c.palette, res)
}

func (c *Console) battle(ctx context.Context, zone int) string {
	b, turn, err := c.arena.Start(ctx, zone)
	switch {
	case errors.Is(err, ErrBattleActive):
		return "A battle is already in progress.\n" + RenderBattle(c.palette, c.arena.Active())
	case errors.Is(err, ErrNoParty):
		return "Select a party first: party <creature>\n"
	case errors.Is(err, ErrZoneLocked):
		return "That zone is not unlocked yet.\n"
	case err != nil && b == nil:
		return "Cannot start a battle: " + err.Error() + "\n"
	case err != nil:
		c.logger.Warn("battle start", zap.Error(err))
	}
	if turn != nil {
		return RenderTurn(c.palette, b, turn)
	}
	return RenderBattle(c.palette, b)
}

func (c *Console) move(ctx context.Context, in command.ParseResult) string {
	b := c.arena.Active()
	if b == nil {
		return "You are not in a battle. Type battle to start one.\n"
	}
	action := combat.Action{MoveID: strings.ToLower(in.Arg(0)), Multiplier: 1}
	rest := 1
	switch strings.ToLower(in.Arg(1)) {
	case "up":
		action.AltitudeDelta = 1
		rest = 2
	case "down":
		action.AltitudeDelta = -1
		rest = 2
	}
	action.Multiplier = in.FloatArg(rest, 1)
	if action.MoveID == "" {
		return RenderBattle(c.palette, b)
	}
	turn, err := c.arena.Move(ctx, action)
	if err != nil && turn == nil {
		return "You can't do that: " + strings.TrimPrefix(err.Error(), "combat: ") + "\n"
	}
	if err != nil {
		c.logger.Warn("battle move", zap.Error(err))
	}
	return RenderTurn(c.palette, b, turn)
}

// resolveCreature maps a 1-based roster index, an id prefix or a name to a
// creature id. Unresolvable input is returned as is so the reducer can
// reject it.
func resolveCreature(st *player.State, arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(st.Creatures) {
		return st.Creatures[n-1].ID
	}
	ids := make([]string, len(st.Creatures))
	for i, c := range st.Creatures {
		ids[i] = c.ID
	}
	if id, ok := uniquePrefix(ids, arg); ok {
		return id
	}
	for _, c := range st.Creatures {
		if strings.EqualFold(c.Name, arg) {
			return c.ID
		}
	}
	return arg
}

// resolveGear maps a 1-based inventory index or an id prefix to a gear id.
func resolveGear(st *player.State, arg string) string {
	if n, err := strconv.Atoi(arg); err == nil {
		if inv := st.InventoryGear(); n >= 1 && n <= len(inv) {
			return inv[n-1].ID
		}
	}
	ids := make([]string, len(st.Gear))
	for i, g := range st.Gear {
		ids[i] = g.ID
	}
	if id, ok := uniquePrefix(ids, arg); ok {
		return id
	}
	return arg
}

// resolveGem maps a 1-based gem index or an id prefix to a loose gem id.
func resolveGem(st *player.State, arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(st.Gems) {
		return st.Gems[n-1].ID
	}
	ids := make([]string, len(st.Gems))
	for i, g := range st.Gems {
		ids[i] = g.ID
	}
	if id, ok := uniquePrefix(ids, arg); ok {
		return id
	}
	return arg
}

func hasGear(st *player.State, id string) bool {
	_, ok := st.GearByID(id)
	return ok
}

func uniquePrefix(ids []string, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	match := ""
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", false
			}
			match = id
		}
	}
	return match, match != ""
}

func resolveSpecies(env *command.Env, arg string) string {
	arg = strings.ToLower(arg)
	if _, ok := env.Templates[arg]; ok {
		return arg
	}
	for _, t := range env.Species {
		if strings.EqualFold(t.Name, arg) || strings.EqualFold(strings.ReplaceAll(t.Name, " ", "_"), arg) {
			return t.ID
		}
	}
	return arg
}

func speciesList(env *command.Env) string {
	ids := make([]string, len(env.Species))
	for i, t := range env.Species {
		ids[i] = t.ID
	}
	return joinOr(ids, "none")
}
