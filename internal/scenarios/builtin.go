package scenarios

import "causalnotes/domain/causal"

func effect(v float64) *float64 { return &v }

func exo(names ...string) []causal.ExogenousSpec {
	specs := make([]causal.ExogenousSpec, len(names))
	for i, n := range names {
		specs[i] = causal.ExogenousSpec{Name: n, StdDev: 1}
	}
	return specs
}

func endo(name string, parents ...causal.Term) causal.EndogenousSpec {
	return causal.EndogenousSpec{Name: name, Parents: parents, NoiseStdDev: 1}
}

func w(parent string, weight float64) causal.Term {
	return causal.Term{Parent: parent, Weight: weight}
}

// Builtin returns the article scenarios in publication order.
func Builtin() []Scenario {
	return []Scenario{
		{
			Name:  "confounder",
			Title: "Controlling for a confounder",
			Kind:  KindConfounder,
			Note:  "Z causes both T and Y. Leaving it out biases the T coefficient upward; adding it recovers 3.",
			Seed:  DefaultSeed,
			N:     DefaultN,
			Structure: causal.Structure{
				Exogenous:  exo("Z"),
				Endogenous: []causal.EndogenousSpec{endo("T", w("Z", 2)), endo("Y", w("T", 3), w("Z", 4))},
			},
			Outcome:    "Y",
			Treatment:  "T",
			Base:       []string{"T"},
			Control:    "Z",
			TrueEffect: effect(3),
		},
		{
			Name:  "mediator",
			Title: "Controlling for a mediator",
			Kind:  KindMediator,
			Note:  "M sits on the path T -> M -> Y. Adding it shrinks the total effect (7) to the direct effect (1).",
			Seed:  DefaultSeed,
			N:     DefaultN,
			Structure: causal.Structure{
				Exogenous:  exo("T"),
				Endogenous: []causal.EndogenousSpec{endo("M", w("T", 2)), endo("Y", w("T", 1), w("M", 3))},
			},
			Outcome:    "Y",
			Treatment:  "T",
			Base:       []string{"T"},
			Control:    "M",
			TrueEffect: effect(7),
		},
		{
			Name:  "collider",
			Title: "Controlling for a collider",
			Kind:  KindCollider,
			Note:  "C is caused by both T and Y. Y ~ T is unbiased; adding C opens a spurious path and pulls the estimate toward 0.5.",
			Seed:  DefaultSeed,
			N:     DefaultN,
			Structure: causal.Structure{
				Exogenous:  exo("T"),
				Endogenous: []causal.EndogenousSpec{endo("Y", w("T", 2)), endo("C", w("T", 1), w("Y", 1))},
			},
			Outcome:    "Y",
			Treatment:  "T",
			Base:       []string{"T"},
			Control:    "C",
			TrueEffect: effect(2),
		},
		{
			Name:  "m_bias",
			Title: "M-bias",
			Kind:  KindMBias,
			Note:  "C is a pre-treatment collider of two unobserved causes. Adjusting for it biases an otherwise clean estimate.",
			Seed:  DefaultSeed,
			N:     DefaultN,
			Structure: causal.Structure{
				Exogenous: exo("U1", "U2"),
				Endogenous: []causal.EndogenousSpec{
					endo("T", w("U1", 1)),
					endo("Y", w("T", 1), w("U2", 1)),
					endo("C", w("U1", 1), w("U2", 1)),
				},
			},
			Outcome:    "Y",
			Treatment:  "T",
			Base:       []string{"T"},
			Control:    "C",
			TrueEffect: effect(1),
		},
		{
			Name:  "bias_amplification",
			Title: "Bias amplification",
			Kind:  KindBiasAmplification,
			Note:  "Z only affects T while U confounds T and Y. Adjusting for Z removes clean variation in T and amplifies the bias from U.",
			Seed:  DefaultSeed,
			N:     DefaultN,
			Structure: causal.Structure{
				Exogenous: exo("Z", "U"),
				Endogenous: []causal.EndogenousSpec{
					endo("T", w("Z", 2), w("U", 1)),
					endo("Y", w("T", 1), w("U", 1)),
				},
			},
			Outcome:    "Y",
			Treatment:  "T",
			Base:       []string{"T"},
			Control:    "Z",
			TrueEffect: effect(1),
		},
	}
}
