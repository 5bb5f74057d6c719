package memory

import "quizduel-service/internal/domain"

// SeedQuestions is the built-in question bank used when no database is configured and by
// the seed command.
func SeedQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "phy-1",
			Text:          "What is Newton's First Law of Motion?",
			Options:       []string{"Force equals mass times acceleration", "An object at rest stays at rest unless acted upon by a force", "For every action there is an equal and opposite reaction", "Energy cannot be created or destroyed"},
			CorrectAnswer: "An object at rest stays at rest unless acted upon by a force",
			Subject:       "Physics",
			Difficulty:    "easy",
		},
		{
			ID:            "phy-2",
			Text:          "What is the SI unit of electric current?",
			Options:       []string{"Volt", "Watt", "Ampere", "Ohm"},
			CorrectAnswer: "Ampere",
			Subject:       "Physics",
			Difficulty:    "easy",
		},
		{
			ID:            "phy-3",
			Text:          "What is the speed of light in vacuum (approximately)?",
			Options:       []string{"3 × 10⁶ m/s", "3 × 10⁸ m/s", "3 × 10¹⁰ m/s", "3 × 10⁴ m/s"},
			CorrectAnswer: "3 × 10⁸ m/s",
			Subject:       "Physics",
			Difficulty:    "medium",
		},
		{
			ID:            "phy-4",
			Text:          "Which particle has a negative charge?",
			Options:       []string{"Proton", "Neutron", "Electron", "Positron"},
			CorrectAnswer: "Electron",
			Subject:       "Physics",
			Difficulty:    "easy",
		},
		{
			ID:            "phy-5",
			Text:          "What is the formula for kinetic energy?",
			Options:       []string{"KE = mv", "KE = ½mv²", "KE = mgh", "KE = mv²"},
			CorrectAnswer: "KE = ½mv²",
			Subject:       "Physics",
			Difficulty:    "medium",
		},
		{
			ID:            "cs-1",
			Text:          "What does CPU stand for?",
			Options:       []string{"Central Processing Unit", "Computer Personal Unit", "Central Program Utility", "Computer Processing Unit"},
			CorrectAnswer: "Central Processing Unit",
			Subject:       "Computer Science",
			Difficulty:    "easy",
		},
		{
			ID:            "cs-2",
			Text:          "What is the time complexity of binary search?",
			Options:       []string{"O(n)", "O(n²)", "O(log n)", "O(1)"},
			CorrectAnswer: "O(log n)",
			Subject:       "Computer Science",
			Difficulty:    "medium",
		},
		{
			ID:            "cs-3",
			Text:          "Which data structure uses LIFO (Last In First Out)?",
			Options:       []string{"Queue", "Stack", "Array", "Linked List"},
			CorrectAnswer: "Stack",
			Subject:       "Computer Science",
			Difficulty:    "easy",
		},
		{
			ID:            "cs-4",
			Text:          "What does HTML stand for?",
			Options:       []string{"Hyper Text Markup Language", "High Tech Modern Language", "Hyper Transfer Markup Language", "Home Tool Markup Language"},
			CorrectAnswer: "Hyper Text Markup Language",
			Subject:       "Computer Science",
			Difficulty:    "easy",
		},
		{
			ID:            "cs-5",
			Text:          "Which sorting algorithm has the best average-case time complexity?",
			Options:       []string{"Bubble Sort", "Insertion Sort", "Quick Sort", "Selection Sort"},
			CorrectAnswer: "Quick Sort",
			Subject:       "Computer Science",
			Difficulty:    "medium",
		},
		{
			ID:            "math-1",
			Text:          "What is the value of π (pi) to two decimal places?",
			Options:       []string{"3.12", "3.14", "3.16", "3.18"},
			CorrectAnswer: "3.14",
			Subject:       "Mathematics",
			Difficulty:    "easy",
		},
		{
			ID:            "math-2",
			Text:          "What is the derivative of x²?",
			Options:       []string{"x", "2x", "x²", "2x²"},
			CorrectAnswer: "2x",
			Subject:       "Mathematics",
			Difficulty:    "medium",
		},
		{
			ID:            "math-3",
			Text:          "What is the sum of angles in a triangle?",
			Options:       []string{"90°", "180°", "270°", "360°"},
			CorrectAnswer: "180°",
			Subject:       "Mathematics",
			Difficulty:    "easy",
		},
		{
			ID:            "math-4",
			Text:          "What is the integral of 2x?",
			Options:       []string{"x", "x²", "2x²", "x² + C"},
			CorrectAnswer: "x² + C",
			Subject:       "Mathematics",
			Difficulty:    "medium",
		},
		{
			ID:            "math-5",
			Text:          "What is log₁₀(1000)?",
			Options:       []string{"2", "3", "4", "10"},
			CorrectAnswer: "3",
			Subject:       "Mathematics",
			Difficulty:    "medium",
		},
		{
			ID:            "chem-1",
			Text:          "What is the chemical symbol for Gold?",
			Options:       []string{"Go", "Gd", "Au", "Ag"},
			CorrectAnswer: "Au",
			Subject:       "Chemistry",
			Difficulty:    "easy",
		},
		{
			ID:            "chem-2",
			Text:          "What is the pH of pure water?",
			Options:       []string{"0", "7", "14", "1"},
			CorrectAnswer: "7",
			Subject:       "Chemistry",
			Difficulty:    "easy",
		},
		{
			ID:            "chem-3",
			Text:          "How many electrons are in a neutral Hydrogen atom?",
			Options:       []string{"0", "1", "2", "3"},
			CorrectAnswer: "1",
			Subject:       "Chemistry",
			Difficulty:    "easy",
		},
		{
			ID:            "chem-4",
			Text:          "What is the most abundant gas in Earth's atmosphere?",
			Options:       []string{"Oxygen", "Carbon Dioxide", "Nitrogen", "Hydrogen"},
			CorrectAnswer: "Nitrogen",
			Subject:       "Chemistry",
			Difficulty:    "medium",
		},
		{
			ID:            "chem-5",
			Text:          "What type of bond is formed when electrons are shared?",
			Options:       []string{"Ionic bond", "Covalent bond", "Metallic bond", "Hydrogen bond"},
			CorrectAnswer: "Covalent bond",
			Subject:       "Chemistry",
			Difficulty:    "medium",
		},
		{
			ID:            "gen-1",
			Text:          "What is the capital of Japan?",
			Options:       []string{"Seoul", "Beijing", "Tokyo", "Bangkok"},
			CorrectAnswer: "Tokyo",
			Subject:       "General",
			Difficulty:    "easy",
		},
		{
			ID:            "gen-2",
			Text:          "In what year did World War II end?",
			Options:       []string{"1943", "1944", "1945", "1946"},
			CorrectAnswer: "1945",
			Subject:       "General",
			Difficulty:    "easy",
		},
		{
			ID:            "gen-3",
			Text:          "Who painted the Mona Lisa?",
			Options:       []string{"Michelangelo", "Leonardo da Vinci", "Raphael", "Donatello"},
			CorrectAnswer: "Leonardo da Vinci",
			Subject:       "General",
			Difficulty:    "easy",
		},
		{
			ID:            "gen-4",
			Text:          "What is the largest planet in our solar system?",
			Options:       []string{"Saturn", "Neptune", "Jupiter", "Uranus"},
			CorrectAnswer: "Jupiter",
			Subject:       "General",
			Difficulty:    "easy",
		},
		{
			ID:            "gen-5",
			Text:          "What is the largest organ in the human body?",
			Options:       []string{"Heart", "Liver", "Brain", "Skin"},
			CorrectAnswer: "Skin",
			Subject:       "General",
			Difficulty:    "medium",
		},
	}
}
