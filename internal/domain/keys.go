package domain

// Storage keys. Each record is persisted independently.
const (
	KeyConfig     = "quiz_master_config_v1"
	KeyQuestions  = "quiz_master_questions_v1"
	KeyTeams      = "quiz_master_teams_v1"
	KeyActiveTeam = "quiz_master_active_team_v1"
	KeyVisited    = "quiz-app-visited"
)
