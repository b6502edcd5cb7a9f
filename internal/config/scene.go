package config

import "fmt"

// SceneConfig describes the entities spawned at startup.
type SceneConfig struct {
	Entities       []EntityConfig        `yaml:"entities"`
	Tethers        []TetherConfig        `yaml:"tethers"`
	AngularTethers []AngularTetherConfig `yaml:"angular_tethers"`
	Chains         []ChainConfig         `yaml:"chains"`
}

type EntityConfig struct {
	ID     uint32 `yaml:"id"`
	Static bool   `yaml:"static"`
	// Hitboxes are created in order; a parent must precede its children.
	Hitboxes []HitboxConfig `yaml:"hitboxes"`
}

// Vec is an [x, y] pair.
type Vec [2]float64

type PivotConfig struct {
	Type string `yaml:"type"` // absolute | normalized
	Pos  Vec    `yaml:"pos"`
}

type HitboxConfig struct {
	Name   string  `yaml:"name"`
	Shape  string  `yaml:"shape"` // circle | rectangle
	Radius float64 `yaml:"radius"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	// Position places a root hitbox; Offset places a child relative to Parent.
	Position Vec         `yaml:"position"`
	Offset   Vec         `yaml:"offset"`
	Angle    float64     `yaml:"angle"`
	Scale    float64     `yaml:"scale"`
	Pivot    PivotConfig `yaml:"pivot"`
	FlipX    bool        `yaml:"flip_x"`

	Parent   string `yaml:"parent"`
	Detached bool   `yaml:"detached"`

	Mass      float64  `yaml:"mass"`
	Collision string   `yaml:"collision"` // soft | hard
	Bit       uint32   `yaml:"bit"`
	Mask      uint32   `yaml:"mask"`
	Flags     []uint16 `yaml:"flags"`
}

// Ref names a hitbox of a scene entity.
type Ref struct {
	Entity uint32 `yaml:"entity"`
	Hitbox string `yaml:"hitbox"`
}

type TetherConfig struct {
	A             Ref     `yaml:"a"`
	B             Ref     `yaml:"b"`
	IdealDistance float64 `yaml:"ideal_distance"`
	Spring        float64 `yaml:"spring"`
	Damping       float64 `yaml:"damping"`
}

type AngularTetherConfig struct {
	Owner       Ref     `yaml:"owner"`
	Origin      Ref     `yaml:"origin"`
	IdealAngle  float64 `yaml:"ideal_angle"`
	AngleOffset float64 `yaml:"angle_offset"`
	Spring      float64 `yaml:"spring"`
	Damping     float64 `yaml:"damping"`
	Padding     float64 `yaml:"padding"`
	Leverage    bool    `yaml:"leverage"`
}

type ChainConfig struct {
	Hitboxes      []Ref   `yaml:"hitboxes"`
	IdealDistance float64 `yaml:"ideal_distance"`
	Spring        float64 `yaml:"spring"`
	Damping       float64 `yaml:"damping"`
	Anchored      bool    `yaml:"anchored"`
	Gravity       Vec     `yaml:"gravity"`
	AlignAngles   bool    `yaml:"align_angles"`
}

// Validate checks shapes, masses, parent order and every cross reference.
func (s *SceneConfig) Validate() error {
	// names maps each hitbox to whether it is a rigid child.
	names := make(map[uint32]map[string]bool, len(s.Entities))

	for i, e := range s.Entities {
		if e.ID == 0 {
			return invalid("scene.entities[%d].id must be positive", i)
		}
		if _, dup := names[e.ID]; dup {
			return invalid("scene entity %d declared twice", e.ID)
		}
		seen := make(map[string]bool, len(e.Hitboxes))
		names[e.ID] = seen

		for j, h := range e.Hitboxes {
			where := func() string { return hitboxPath(e.ID, j, h.Name) }
			if h.Name == "" {
				return invalid("%s: name is required", where())
			}
			if _, dup := seen[h.Name]; dup {
				return invalid("%s: duplicate name", where())
			}
			switch h.Shape {
			case "circle":
				if h.Radius <= 0 {
					return invalid("%s: radius must be positive", where())
				}
			case "rectangle":
				if h.Width <= 0 || h.Height <= 0 {
					return invalid("%s: width and height must be positive", where())
				}
			default:
				return invalid("%s: shape %q", where(), h.Shape)
			}
			if h.Mass <= 0 {
				return invalid("%s: mass must be positive", where())
			}
			if h.Scale < 0 {
				return invalid("%s: scale must not be negative", where())
			}
			switch h.Collision {
			case "", "soft", "hard":
			default:
				return invalid("%s: collision %q", where(), h.Collision)
			}
			switch h.Pivot.Type {
			case "", "absolute", "normalized":
			default:
				return invalid("%s: pivot type %q", where(), h.Pivot.Type)
			}
			if h.Parent != "" {
				if _, ok := seen[h.Parent]; !ok {
					return invalid("%s: parent %q must be declared earlier", where(), h.Parent)
				}
			}
			seen[h.Name] = h.Parent != "" && !h.Detached
		}
	}

	resolve := func(what string, r Ref) error {
		if _, ok := names[r.Entity][r.Hitbox]; !ok {
			return invalid("%s references unknown hitbox %d/%s", what, r.Entity, r.Hitbox)
		}
		return nil
	}
	for i, t := range s.Tethers {
		if err := resolve(indexed("scene.tethers", i), t.A); err != nil {
			return err
		}
		if err := resolve(indexed("scene.tethers", i), t.B); err != nil {
			return err
		}
	}
	for i, t := range s.AngularTethers {
		if err := resolve(indexed("scene.angular_tethers", i), t.Owner); err != nil {
			return err
		}
		if err := resolve(indexed("scene.angular_tethers", i), t.Origin); err != nil {
			return err
		}
	}
	for i, c := range s.Chains {
		if len(c.Hitboxes) < 2 {
			return invalid("scene.chains[%d] needs at least two hitboxes", i)
		}
		for j, r := range c.Hitboxes {
			if err := resolve(indexed("scene.chains", i), r); err != nil {
				return err
			}
			if names[r.Entity][r.Hitbox] && (j > 0 || !c.Anchored) {
				return invalid("scene.chains[%d] node %d/%s is a rigid child and cannot move freely", i, r.Entity, r.Hitbox)
			}
		}
	}
	return nil
}

func hitboxPath(entity uint32, i int, name string) string {
	return fmt.Sprintf("scene entity %d hitbox[%d] %q", entity, i, name)
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
