package resolve

// Canonical keys and alias tables for the VCT scene. These should be
// replaced with a database lookup if the roster churn gets annoying.

var canonicalTeams = []string{
	"cloud9",
	"sentinels",
	"fnatic",
	"team liquid",
	"g2 esports",
	"nrg",
	"loud",
	"drx",
	"paper rex",
	"evil geniuses",
	"100 thieves",
	"karmine corp",
	"team heretics",
	"fut esports",
	"edward gaming",
	"gen.g",
	"t1",
	"leviatan",
	"kru esports",
	"talon esports",
	"global esports",
	"bilibili gaming",
	"trace esports",
	"team vitality",
}

var teamAliases = map[string]string{
	"c9":     "cloud9",
	"sen":    "sentinels",
	"fnc":    "fnatic",
	"tl":     "team liquid",
	"liquid": "team liquid",
	"g2":     "g2 esports",
	"prx":    "paper rex",
	"eg":     "evil geniuses",
	"100t":   "100 thieves",
	"kc":     "karmine corp",
	"th":     "team heretics",
	"fut":    "fut esports",
	"edg":    "edward gaming",
	"geng":   "gen.g",
	"lev":    "leviatan",
	"kru":    "kru esports",
	"tln":    "talon esports",
	"ge":     "global esports",
	"blg":    "bilibili gaming",
	"te":     "trace esports",
	"vit":    "team vitality",
}

var canonicalTournaments = []string{
	"valorant champions",
	"vct masters",
	"vct americas",
	"vct emea",
	"vct pacific",
	"vct china",
	"challengers",
	"game changers",
	"ascension",
	"off season",
}

var tournamentAliases = map[string]string{
	"champs":    "valorant champions",
	"champions": "valorant champions",
	"masters":   "vct masters",
	"gc":        "game changers",
	"amer":      "vct americas",
	"apac":      "vct pacific",
	"cn":        "vct china",
}
