package library

const (
	WarmUpUpper   = "WarmUp_Upper"
	WarmUpLower   = "WarmUp_Lower"
	FloorPress    = "Floor Press"
	OneArmRow     = "One Arm Row"
	OverheadPress = "Overhead Press"
	BicepCurl     = "Bicep Curl"
	TricepExt     = "Tricep Ext"
	GobletSquat   = "Goblet Squat"
	RDL           = "RDL"
	Lunges        = "Lunges"
	Plank         = "Plank"
	ShadowBoxing  = "Shadow Boxing"
)

var exercises = map[string]Exercise{
	WarmUpUpper: {
		ID:       WarmUpUpper,
		Name:     "Upper body warm-up",
		Category: CategoryWarmUp,
		Instructions: []string{
			"Arm circles: 10 big circles forward, 10 backward.",
			"Wrist rolls: interlock the hands and roll the wrists for 30 seconds.",
			"Jumping jacks: 30 seconds to raise the heart rate.",
		},
		Safety: "Skipping the shoulder warm-up makes the pressing movements risky.",
		Voice:  "Five minutes of warm-up. Big arm circles, then loosen up your wrists.",
		Timed:  true,
	},
	WarmUpLower: {
		ID:       WarmUpLower,
		Name:     "Lower body warm-up",
		Category: CategoryWarmUp,
		Instructions: []string{
			"Bodyweight squats: 15 fast half squats.",
			"Groin stretch: sit in the butterfly position.",
			"High knees on the spot: 30 seconds.",
		},
		Voice: "Lower body warm-up. Quick bodyweight squats, no weights.",
		Timed: true,
	},
	FloorPress: {
		ID:       FloorPress,
		Name:     "Dumbbell floor press",
		Category: CategoryPress,
		Instructions: []string{
			"Lie on your back with the knees bent and press the dumbbells above the chest.",
		},
		Safety:    "Do not flare the elbows to 90 degrees, keep them at about 45 degrees to the body.",
		Technique: "Pause for one second when the elbows touch the floor, then press explosively.",
		Voice:     "Floor press. Keep your elbows close, forty five degrees.",
	},
	OneArmRow: {
		ID:       OneArmRow,
		Name:     "One arm dumbbell row",
		Category: CategoryPull,
		Instructions: []string{
			"One hand and one knee on the bench, back flat like a table.",
		},
		Safety:    "Never round the back, a rounded back loads the spinal discs.",
		Technique: "Pull the dumbbell towards the hip pocket, not up to the chest.",
		Voice:     "One arm row. Do not round your back. Pull towards your hip.",
	},
	OverheadPress: {
		ID:       OverheadPress,
		Name:     "Standing overhead press",
		Category: CategoryPress,
		Instructions: []string{
			"Dumbbells next to the ears, press towards the ceiling.",
		},
		Safety: "Do not arch the lower back on the way up, keep the abs braced.",
		Voice:  "Overhead press. Brace your core.",
	},
	BicepCurl: {
		ID:       BicepCurl,
		Name:     "Standing biceps curl",
		Category: CategoryArms,
		Instructions: []string{
			"Elbows pinned to the sides, only the forearms move.",
		},
		Safety: "Swinging the torso to lift the weight is cheating.",
		Voice:  "Biceps curl. Keep your elbows still.",
	},
	TricepExt: {
		ID:       TricepExt,
		Name:     "Two hand triceps extension",
		Category: CategoryArms,
		Instructions: []string{
			"Dumbbell behind the head, elbows pointing at the ceiling and fixed.",
		},
		Voice: "Triceps extension. Elbows point to the ceiling.",
	},
	GobletSquat: {
		ID:       GobletSquat,
		Name:     "Goblet squat",
		Category: CategorySquat,
		Instructions: []string{
			"Dumbbell held against the chest, feet slightly wider than shoulder width.",
		},
		Safety:    "Knees must not cave inwards, keep the chest up.",
		Technique: "Sit back as if onto a chair, weight on the heels.",
		Voice:     "Goblet squat. Chest up, weight on your heels.",
	},
	RDL: {
		ID:       RDL,
		Name:     "Romanian deadlift",
		Category: CategoryHinge,
		Instructions: []string{
			"Knees slightly bent and locked, hinge at the hips with a flat back.",
		},
		Safety:    "The most dangerous movement for the lower back if you round it. Look forward and down.",
		Technique: "Push the hips back until you feel a strong stretch in the hamstrings.",
		Voice:     "Romanian deadlift. Do not round your back. Push your hips back.",
	},
	Lunges: {
		ID:       Lunges,
		Name:     "Reverse lunges",
		Category: CategoryLunge,
		Instructions: []string{
			"Step back, both knees at 90 degrees, torso upright.",
		},
		Voice: "Lunges. Lower the back knee under control.",
	},
	Plank: {
		ID:       Plank,
		Name:     "Plank",
		Category: CategoryCore,
		Instructions: []string{
			"Body straight as a ruler, hips not raised, abs tight.",
		},
		Voice: "Plank. Pull your belly in. Keep breathing.",
		Timed: true,
	},
	ShadowBoxing: {
		ID:       ShadowBoxing,
		Name:     "Shadow boxing",
		Category: CategoryConditioning,
		Instructions: []string{
			"Boxing guard, fast straight punches, keep the feet moving.",
		},
		Voice: "Shadow boxing. Keep breathing.",
	},
}
