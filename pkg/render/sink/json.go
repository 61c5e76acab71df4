package sink

import "github.com/matzehuels/pinwheel/pkg/scene"

// RenderJSON renders the scene in its serialized form. Options are accepted
// for symmetry with the other sinks and have no effect.
func RenderJSON(s scene.Scene, _ ...Option) ([]byte, error) {
	return scene.Marshal(s)
}
