/* fields.go
 * Contains the candidate key tables for every field the normalizer reads. Each export vintage named its columns
 * differently, so a field is described by the list of keys it has appeared under, in priority order. Supporting a new
 * export only needs new keys appended here
 */

package normalize

// Candidates is a prioritised list of source keys for one field. The first key holding a non-empty value wins
type Candidates []string

// Player fields
var (
	PlayerName              = Candidates{"name", "Name", "457 Unique Players", "Player", "Players", "Player Name"}
	GamesPlayed             = Candidates{"gamesPlayed", "Games Played", "GP"}
	GamesWon                = Candidates{"gamesWon", "Games Won", "GW"}
	WinningPercentage       = Candidates{"winningPercentage", "Winning %", "Win %", "Win Percentage"}
	BodsPlayed              = Candidates{"bodsPlayed", "BODs Played", "BOD's Played", "Tournaments Played"}
	BestResult              = Candidates{"bestResult", "Best Result", "Best Finish"}
	AvgFinish               = Candidates{"avgFinish", "AVG Finish", "Avg Finish", "Average Finish"}
	IndividualChampionships = Candidates{"individualChampionships", "Individual Championships", "Individual Champs"}
	DivisionChampionships   = Candidates{"divisionChampionships", "Division Championships", "Division Champs"}
	TotalChampionships      = Candidates{"totalChampionships", "Total Championships", "Total Champs"}
	PlayerDivision          = Candidates{"division", "Division"}
	Pairing                 = Candidates{"pairing", "Pairing", "Partner"}
	DrawingSequence         = Candidates{"drawingSequence", "Drawing Sequence", "Drawing Seq"}
)

// Tournament fields. Per-tournament files take date and format from the file name, aggregate rows carry them
var (
	TournamentDate      = Candidates{"Date", "date"}
	TournamentFormat    = Candidates{"Format", "format"}
	BodNumber           = Candidates{"bodNumber", "BOD #", "BOD Number"}
	Location            = Candidates{"location", "Location"}
	AdvancementCriteria = Candidates{"advancementCriteria", "Advancement Criteria"}
	Notes               = Candidates{"notes", "Notes"}
	PhotoAlbums         = Candidates{"photoAlbums", "Photo Albums", "Photos"}
)

// Team result fields
var (
	Player1       = Candidates{"Player 1", "Player1"}
	Player2       = Candidates{"Player 2", "Player2"}
	TeamName      = Candidates{"Teams (Round Robin)", "Teams (Summary)", "Team", "Teams"}
	Division      = Candidates{"Division", "division"}
	Seed          = Candidates{"Seed", "Seed.1"}
	Round1        = Candidates{"Round 1", "Round1"}
	Round2        = Candidates{"Round 2", "Round2"}
	Round3        = Candidates{"Round 3", "Round3"}
	RRWon         = Candidates{"RR Won"}
	RRLost        = Candidates{"RR Lost"}
	RRPlayed      = Candidates{"RR Played"}
	RRWinPct      = Candidates{"RR Win %", "RR Win%"}
	RRRank        = Candidates{"RR Rank"}
	R16Won        = Candidates{"R16 Won"}
	R16Lost       = Candidates{"R16 Lost"}
	QFWon         = Candidates{"QF Won"}
	QFLost        = Candidates{"QF Lost"}
	SFWon         = Candidates{"SF Won"}
	SFLost        = Candidates{"SF Lost"}
	FinalsWon     = Candidates{"Finals Won"}
	FinalsLost    = Candidates{"Finals Lost"}
	BracketWon    = Candidates{"Bracket Won"}
	BracketLost   = Candidates{"Bracket Lost"}
	BracketPlayed = Candidates{"Bracket Played"}
	TotalWon      = Candidates{"Total Won"}
	TotalLost     = Candidates{"Total Lost"}
	TotalPlayed   = Candidates{"Total Played"}
	WinPct        = Candidates{"Win %", "Win%", "Winning %"}
	FinalRank     = Candidates{"Final Rank"}
	BodFinish     = Candidates{"BOD Finish"}
	Home          = Candidates{"Home"}
)
