package reducer

// NewDeepMerge returns the deep-dict-merge reducer: nested mappings are
// merged recursively with proposed values winning per leaf key. Arrays inside
// mappings are replaced wholesale, never merged.
func NewDeepMerge() Func {
	return func(current, proposed any) (any, error) {
		base, ok := asMap(current)
		if !ok {
			return nil, errf(DeepMerge, "current value is not a mapping (%T)", current)
		}
		update, ok := asMap(proposed)
		if !ok {
			return nil, errf(DeepMerge, "proposed value is not a mapping (%T)", proposed)
		}
		return deepMerge(base, update), nil
	}
}

func deepMerge(base, update map[string]any) map[string]any {
	for key, value := range update {
		existing, exists := base[key]
		if !exists {
			base[key] = value
			continue
		}

		existingMap, okExisting := asMap(existing)
		valueMap, okValue := asMap(value)
		if okExisting && okValue && !isNilish(existing) && !isNilish(value) {
			base[key] = deepMerge(existingMap, valueMap)
			continue
		}

		base[key] = value
	}
	return base
}

// isNilish guards against asMap treating nil as an empty mapping, which
// would turn a proposed nil into {} instead of an overwrite.
func isNilish(v any) bool {
	return v == nil
}
