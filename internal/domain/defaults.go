package domain

// DefaultConfig returns the bundled configuration used on first run and after a reset.
func DefaultConfig() AppConfig {
	return AppConfig{
		AppName:      "Quiz Master",
		CompanyName:  "Quiz Master",
		EnableRounds: true,
		Rounds: []Round{
			{Title: "Round 1: Rapid Fire", Range: [2]int{1, 20}},
			{Title: "Round 2: General Knowledge", Range: [2]int{21, 40}},
			{Title: "Round 3: Grand Finale", Range: [2]int{41, 60}},
		},
		Timer: TimerConfig{
			DefaultDuration: 30,
			PassDuration:    15,
			AutoStartOnOpen: false,
			AutoStartOnPass: true,
		},
		Scoring: ScoringConfig{
			Correct: 10,
			Bonus:   5,
			Penalty: -5,
		},
		Theme: ThemeConfig{
			Mode:        ThemeDark,
			ColorScheme: SchemePurple,
		},
		Sounds: SoundConfig{
			MasterEnabled: true,
			Click:         true,
			Select:        true,
			Reveal:        true,
			Back:          true,
			TimerTick:     true,
			TimerEnd:      true,
			Success:       true,
			Error:         true,
			Warning:       true,
			Pass:          true,
			Fullscreen:    true,
		},
		Fonts: FontConfig{
			GridNumber:    "1.25rem",
			StatsTitle:    "0.75rem",
			StatsValue:    "1.5rem",
			RoundTitle:    "1.5rem",
			QuestionTitle: "3rem",
			AnswerTitle:   "2rem",
			TimerTime:     "3.75rem",
		},
	}
}

// DefaultQuestions returns the bundled question set, sorted by id.
func DefaultQuestions() []Question {
	return []Question{
		{ID: 1, Text: "What is the largest planet in our solar system?", Answer: "Jupiter"},
		{ID: 2, Text: "How many continents are there on Earth?", Answer: "Seven"},
		{ID: 3, Text: "What is the chemical symbol for gold?", Answer: "Au"},
		{ID: 4, Text: "Which ocean is the deepest?", Answer: "The Pacific Ocean"},
		{ID: 5, Text: "In which year did the first person walk on the Moon?", Answer: "1969"},
		{ID: 6, Text: "What is the tallest mountain above sea level?", Answer: "Mount Everest"},
		{ID: 7, Text: "How many sides does a hexagon have?", Answer: "Six"},
		{ID: 8, Text: "What gas do plants absorb from the atmosphere?", Answer: "Carbon dioxide"},
		{ID: 9, Text: "Which language has the most native speakers?", Answer: "Mandarin Chinese"},
		{ID: 10, Text: "What is the boiling point of water at sea level in Celsius?", Answer: "100 degrees"},
		{ID: 21, Text: "Who painted the Mona Lisa?", Answer: "Leonardo da Vinci"},
		{ID: 22, Text: "What is the capital city of Australia?", Answer: "Canberra"},
		{ID: 23, Text: "How many players are on a football (soccer) team on the field?", Answer: "Eleven"},
		{ID: 24, Text: "Which planet is known as the Red Planet?", Answer: "Mars"},
		{ID: 25, Text: "What is the smallest prime number?", Answer: "Two"},
		{ID: 41, Text: "Which element has the atomic number 1?", Answer: "Hydrogen"},
		{ID: 42, Text: "What is the longest river in Africa?", Answer: "The Nile"},
		{ID: 43, Text: "Who wrote the play Romeo and Juliet?", Answer: "William Shakespeare"},
	}
}
