package exercises

import (
	"github.com/2beens/fittrack/pkg"
)

type catalogEntry struct {
	name, muscleGroup, category, equipment, description string
}

var builtinCatalog = []catalogEntry{
	// chest
	{"Bench Press", "chest", "strength", "barbell", "Flat barbell press from the chest, the main horizontal push."},
	{"Incline Bench Press", "chest", "strength", "barbell", "Barbell press on a 30-45 degree incline, upper chest bias."},
	{"Dumbbell Bench Press", "chest", "strength", "dumbbell", "Flat press with dumbbells for a longer range of motion."},
	{"Dumbbell Fly", "chest", "strength", "dumbbell", "Wide-arc fly on a flat bench."},
	{"Cable Crossover", "chest", "strength", "cable", "Standing fly between two high pulleys."},
	{"Push-Up", "chest", "bodyweight", "bodyweight", "Classic floor push-up, body in a straight line."},
	{"Dips", "chest", "bodyweight", "bodyweight", "Parallel bar dip with a forward lean."},
	// back
	{"Deadlift", "back", "strength", "barbell", "Conventional pull from the floor to lockout."},
	{"Barbell Row", "back", "strength", "barbell", "Bent-over row to the lower chest."},
	{"Pull-Up", "back", "bodyweight", "bodyweight", "Overhand grip pull until the chin clears the bar."},
	{"Lat Pulldown", "back", "strength", "cable", "Wide-grip pulldown to the upper chest."},
	{"Seated Cable Row", "back", "strength", "cable", "Neutral-grip row on a low pulley."},
	{"Dumbbell Row", "back", "strength", "dumbbell", "One-arm row supported on a bench."},
	// shoulders
	{"Overhead Press", "shoulders", "strength", "barbell", "Standing barbell press from the front rack to overhead."},
	{"Dumbbell Shoulder Press", "shoulders", "strength", "dumbbell", "Seated or standing dumbbell press."},
	{"Lateral Raise", "shoulders", "strength", "dumbbell", "Raise dumbbells to the side up to shoulder height."},
	{"Face Pull", "shoulders", "strength", "cable", "Rope pull to the face with external rotation."},
	// arms
	{"Barbell Curl", "biceps", "strength", "barbell", "Standing curl with a straight or EZ bar."},
	{"Dumbbell Curl", "biceps", "strength", "dumbbell", "Alternating or simultaneous dumbbell curl."},
	{"Hammer Curl", "biceps", "strength", "dumbbell", "Neutral-grip dumbbell curl."},
	{"Tricep Pushdown", "triceps", "strength", "cable", "Cable pushdown with a bar or rope."},
	{"Skull Crusher", "triceps", "strength", "barbell", "Lying extension lowering the bar to the forehead."},
	{"Overhead Tricep Extension", "triceps", "strength", "dumbbell", "Dumbbell extension behind the head."},
	{"Wrist Curl", "forearms", "strength", "dumbbell", "Seated curl at the wrist, forearms on the thighs."},
	{"Farmer's Walk", "forearms", "strength", "dumbbell", "Carry heavy weights for distance or time."},
	// legs
	{"Back Squat", "quads", "strength", "barbell", "High or low bar squat to at least parallel."},
	{"Front Squat", "quads", "strength", "barbell", "Squat with the bar in the front rack."},
	{"Leg Press", "quads", "strength", "machine", "Sled leg press."},
	{"Walking Lunge", "quads", "strength", "dumbbell", "Alternating forward lunges while walking."},
	{"Bulgarian Split Squat", "quads", "strength", "dumbbell", "Rear-foot-elevated split squat."},
	{"Romanian Deadlift", "hamstrings", "strength", "barbell", "Hip hinge with soft knees, bar close to the legs."},
	{"Leg Curl", "hamstrings", "strength", "machine", "Lying or seated machine curl."},
	{"Hip Thrust", "glutes", "strength", "barbell", "Barbell hip extension with the upper back on a bench."},
	{"Kettlebell Swing", "glutes", "strength", "kettlebell", "Hip-driven swing to chest height."},
	{"Standing Calf Raise", "calves", "strength", "machine", "Full range calf raise under load."},
	// core
	{"Plank", "core", "bodyweight", "bodyweight", "Forearm plank held for time."},
	{"Hanging Leg Raise", "core", "bodyweight", "bodyweight", "Raise straight legs while hanging from a bar."},
	{"Cable Crunch", "core", "strength", "cable", "Kneeling crunch on a high pulley."},
	// full body and conditioning
	{"Power Clean", "full_body", "strength", "barbell", "Explosive pull from the floor to the front rack."},
	{"Burpee", "full_body", "bodyweight", "bodyweight", "Squat thrust, push-up and jump."},
	{"Running", "cardio", "cardio", "other", "Treadmill or outdoor run."},
	{"Rowing Machine", "cardio", "cardio", "machine", "Ergometer rowing."},
	{"Cycling", "cardio", "cardio", "machine", "Stationary or road bike."},
	{"Jump Rope", "cardio", "cardio", "other", "Continuous skipping."},
	// mobility
	{"Hamstring Stretch", "hamstrings", "flexibility", "bodyweight", "Seated or standing hamstring stretch held for time."},
	{"Hip Flexor Stretch", "glutes", "flexibility", "bodyweight", "Half-kneeling hip flexor stretch."},
	{"Band Pull-Apart", "shoulders", "flexibility", "band", "Pull a light band apart at shoulder height."},
}

// BuiltinCatalog returns the library exercises seeded on startup.
func BuiltinCatalog() []Exercise {
	list := make([]Exercise, 0, len(builtinCatalog))
	for _, e := range builtinCatalog {
		list = append(list, Exercise{
			Slug:        pkg.Slugify(e.name),
			Name:        e.name,
			MuscleGroup: e.muscleGroup,
			Category:    e.category,
			Equipment:   e.equipment,
			Description: e.description,
		})
	}
	return list
}
