package valueobjects

import "fmt"

// PoseInstructions is the fixed, ordered set of viewpoints a layer can be
// rendered from. Index 0 is the pose every new layer starts at.
var PoseInstructions = []string{
	"Full frontal view, hands on hips",
	"Slightly turned, 3/4 view",
	"Side profile view",
	"Jumping in mid-air, dynamic pose",
	"Walking towards camera",
	"Leaning against a wall",
}

func DefaultPoseInstruction() string {
	return PoseInstructions[0]
}

func PoseInstructionAt(index int) (string, error) {
	if index < 0 || index >= len(PoseInstructions) {
		return "", fmt.Errorf("pose index must be between 0 and %d, got %d", len(PoseInstructions)-1, index)
	}
	return PoseInstructions[index], nil
}
