package templates

type BuiltinEntry struct {
	Slug     string
	Sets     int
	Reps     int
	WeightKg float64
}

type BuiltinTemplate struct {
	Name        string
	Description string
	Exercises   []BuiltinEntry
}

// BuiltinTemplates reference library exercises by slug, see exercises.BuiltinCatalog.
var BuiltinTemplates = []BuiltinTemplate{
	{
		Name:        "Full Body Beginner",
		Description: "Three compound lifts and a core finisher. Two or three times a week.",
		Exercises: []BuiltinEntry{
			{Slug: "back-squat", Sets: 3, Reps: 8, WeightKg: 40},
			{Slug: "bench-press", Sets: 3, Reps: 8, WeightKg: 30},
			{Slug: "barbell-row", Sets: 3, Reps: 8, WeightKg: 30},
			{Slug: "plank", Sets: 3, Reps: 1},
		},
	},
	{
		Name:        "Push Day",
		Description: "Chest, shoulders and triceps.",
		Exercises: []BuiltinEntry{
			{Slug: "bench-press", Sets: 4, Reps: 6, WeightKg: 60},
			{Slug: "overhead-press", Sets: 3, Reps: 8, WeightKg: 35},
			{Slug: "incline-bench-press", Sets: 3, Reps: 10, WeightKg: 45},
			{Slug: "lateral-raise", Sets: 3, Reps: 15, WeightKg: 8},
			{Slug: "tricep-pushdown", Sets: 3, Reps: 12, WeightKg: 20},
		},
	},
	{
		Name:        "Pull Day",
		Description: "Back and biceps.",
		Exercises: []BuiltinEntry{
			{Slug: "deadlift", Sets: 3, Reps: 5, WeightKg: 80},
			{Slug: "pull-up", Sets: 3, Reps: 8},
			{Slug: "seated-cable-row", Sets: 3, Reps: 10, WeightKg: 45},
			{Slug: "face-pull", Sets: 3, Reps: 15, WeightKg: 15},
			{Slug: "barbell-curl", Sets: 3, Reps: 10, WeightKg: 25},
		},
	},
	{
		Name:        "Leg Day",
		Description: "Quads, hamstrings, glutes and calves.",
		Exercises: []BuiltinEntry{
			{Slug: "back-squat", Sets: 4, Reps: 6, WeightKg: 70},
			{Slug: "romanian-deadlift", Sets: 3, Reps: 8, WeightKg: 60},
			{Slug: "leg-press", Sets: 3, Reps: 12, WeightKg: 120},
			{Slug: "leg-curl", Sets: 3, Reps: 12, WeightKg: 35},
			{Slug: "standing-calf-raise", Sets: 4, Reps: 15, WeightKg: 50},
		},
	},
}
