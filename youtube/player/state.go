package player

// State is a stage of config resolution.
type State int

// Resolution states. StateResolved and StateFailed are terminal.
const (
	// StateInit is the start; the watch page is fetched next.
	StateInit State = iota
	// StateWatchPageFetched holds a parsed watch page awaiting classification.
	StateWatchPageFetched
	// StatePlayable means the watch page carried a player object.
	StatePlayable
	// StateNeedsEmbed means the player object must come from the embed page.
	StateNeedsEmbed
	// StateEmbedFetched means the embed player config was merged in.
	StateEmbedFetched
	// StateLegacyInfoFetched means the legacy info endpoint was read.
	StateLegacyInfoFetched
	// StateResolved means a validated player config was produced.
	StateResolved
	// StateFailed means resolution stopped with an error.
	StateFailed
)

var stateNames = map[State]string{
	StateInit:              "init",
	StateWatchPageFetched:  "watch_page_fetched",
	StatePlayable:          "playable",
	StateNeedsEmbed:        "needs_embed",
	StateEmbedFetched:      "embed_fetched",
	StateLegacyInfoFetched: "legacy_info_fetched",
	StateResolved:          "resolved",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateFailed
}
