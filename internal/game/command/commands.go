// Package command provides the console command registry and parser, and the
// pure reducers that apply player actions to a player.State.
package command

// Categories for organizing commands.
const (
	CategoryRoster  = "roster"
	CategoryForge   = "forge"
	CategoryCombat  = "combat"
	CategoryEconomy = "economy"
	CategorySystem  = "system"
)

// Handler identifiers mapping console commands to engine operations.
const (
	HandlerStatus   = "status"
	HandlerRoster   = "roster"
	HandlerCatch    = "catch"
	HandlerRelease  = "release"
	HandlerParty    = "party"
	HandlerHunt     = "hunt"
	HandlerRecall   = "recall"
	HandlerAllocate = "allocate"
	HandlerCraft    = "craft"
	HandlerCraftGem = "gem"
	HandlerEquip    = "equip"
	HandlerUnequip  = "unequip"
	HandlerSocket   = "socket"
	HandlerUnsocket = "unsocket"
	HandlerSell     = "sell"
	HandlerUse      = "use"
	HandlerUpgrade  = "upgrade"
	HandlerBattle   = "battle"
	HandlerMove     = "move"
	HandlerFlee     = "flee"
	HandlerItems    = "items"
	HandlerReset    = "reset"
	HandlerHelp     = "help"
	HandlerSave     = "save"
	HandlerQuit     = "quit"
)

// Command defines a player-invocable console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage lists the arguments.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the engine operation.
	Handler string
}

// BuiltinCommands returns all built-in console commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "status", Aliases: []string{"st"}, Help: "Show wallet, zone and buffs", Category: CategorySystem, Handler: HandlerStatus},
		{Name: "roster", Aliases: []string{"r"}, Help: "List owned creatures", Category: CategoryRoster, Handler: HandlerRoster},
		{Name: "catch", Usage: "<species> [multiplier]", Help: "Attempt to catch a creature", Category: CategoryRoster, Handler: HandlerCatch},
		{Name: "release", Usage: "<creature>", Help: "Release a creature; its gear returns to inventory", Category: CategoryRoster, Handler: HandlerRelease},
		{Name: "party", Aliases: []string{"p"}, Usage: "<creature>...", Help: "Select the battle party", Category: CategoryRoster, Handler: HandlerParty},
		{Name: "hunt", Usage: "<creature>", Help: "Assign a creature to hunting", Category: CategoryRoster, Handler: HandlerHunt},
		{Name: "recall", Usage: "<creature>", Help: "Recall a creature from hunting", Category: CategoryRoster, Handler: HandlerRecall},
		{Name: "allocate", Aliases: []string{"alloc"}, Usage: "<creature> <stat>", Help: "Spend a stat point", Category: CategoryRoster, Handler: HandlerAllocate},
		{Name: "craft", Aliases: []string{"c"}, Usage: "<beak|talons>", Help: "Craft gear", Category: CategoryForge, Handler: HandlerCraft},
		{Name: "gem", Help: "Craft a gem", Category: CategoryForge, Handler: HandlerCraftGem},
		{Name: "equip", Aliases: []string{"eq"}, Usage: "<creature> <gear>", Help: "Equip gear on a creature", Category: CategoryForge, Handler: HandlerEquip},
		{Name: "unequip", Usage: "<creature> <beak|talons>", Help: "Return gear to inventory", Category: CategoryForge, Handler: HandlerUnequip},
		{Name: "socket", Usage: "<gear> <gem> <index>", Help: "Socket a gem into gear", Category: CategoryForge, Handler: HandlerSocket},
		{Name: "unsocket", Usage: "<gear> <index>", Help: "Remove a gem from gear", Category: CategoryForge, Handler: HandlerUnsocket},
		{Name: "sell", Usage: "<gear|gem>", Help: "Salvage an item for feathers", Category: CategoryEconomy, Handler: HandlerSell},
		{Name: "use", Usage: "<consumable> <rarity>", Help: "Activate a consumable", Category: CategoryEconomy, Handler: HandlerUse},
		{Name: "upgrade", Aliases: []string{"up"}, Usage: "<upgrade>", Help: "Purchase an upgrade level", Category: CategoryEconomy, Handler: HandlerUpgrade},
		{Name: "battle", Aliases: []string{"b", "fight"}, Usage: "[zone]", Help: "Start a battle", Category: CategoryCombat, Handler: HandlerBattle},
		{Name: "move", Aliases: []string{"m"}, Usage: "<move> [up|down] [multiplier]", Help: "Use a move in battle", Category: CategoryCombat, Handler: HandlerMove},
		{Name: "flee", Help: "Forfeit the current battle", Category: CategoryCombat, Handler: HandlerFlee},
		{Name: "items", Aliases: []string{"i", "inv"}, Help: "List gear, gems and consumables", Category: CategoryForge, Handler: HandlerItems},
		{Name: "help", Aliases: []string{"h", "?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "save", Help: "Save now", Category: CategorySystem, Handler: HandlerSave},
		{Name: "reset", Usage: "confirm", Help: "Erase the save and start over", Category: CategorySystem, Handler: HandlerReset},
		{Name: "quit", Aliases: []string{"q", "exit"}, Help: "Save and quit", Category: CategorySystem, Handler: HandlerQuit},
	}
}
