package telemetry

// Aggregator payloads arrive in a handful of known shapes. Each shape gets
// an explicit adapter; NormalizeADSBPayload resolves the union once at the
// ingestion boundary so nothing downstream branches on provider field
// names.
//
// Known shapes:
//
//	A) {"aircraft":[{"lat":..,"lon":..,...}], ...}
//	B) {"ac":[{"lat":..,"lon":..,...}], ...}
//	C) {"lat":..,"lon":.., ...}            single aircraft, flat
//	D) {"aircraft":{"lat":..,"lon":..}}    single aircraft, nested

// NormalizeADSBPayload resolves a decoded payload into a canonical Record,
// or nil when no position can be found under any known shape.
func NormalizeADSBPayload(payload map[string]interface{}) *Record {
	if payload == nil {
		return nil
	}

	// Shape C: flat single aircraft.
	if rec := adaptStateFields(payload); rec != nil {
		return rec
	}

	// Shape D: nested single aircraft.
	if nested, ok := payload["aircraft"].(map[string]interface{}); ok {
		if rec := adaptStateFields(nested); rec != nil {
			return rec
		}
	}

	// Shapes A and B: first element of a list.
	for _, key := range []string{"aircraft", "ac"} {
		list, ok := payload[key].([]interface{})
		if !ok || len(list) == 0 {
			continue
		}
		first, ok := list[0].(map[string]interface{})
		if !ok {
			continue
		}
		if rec := adaptStateFields(first); rec != nil {
			return rec
		}
	}

	return nil
}

// adaptStateFields extracts the canonical fields from one aircraft state
// object. Returns nil unless both lat and lon are present.
func adaptStateFields(obj map[string]interface{}) *Record {
	lat := floatField(obj, "lat")
	lon := floatField(obj, "lon")
	if lat == nil || lon == nil {
		return nil
	}

	rec := &Record{
		Latitude:   lat,
		Longitude:  lon,
		AgeSeconds: floatField(obj, "seen"),
		Track:      floatField(obj, "track"),
	}

	// Barometric altitude preferred; "ground" means on the deck.
	if alt := floatField(obj, "alt_baro"); alt != nil {
		rec.AltitudeFt = alt
	} else if s, ok := obj["alt_baro"].(string); ok && s == "ground" {
		zero := 0.0
		rec.AltitudeFt = &zero
	} else {
		rec.AltitudeFt = floatField(obj, "altitude")
	}

	if gs := floatField(obj, "gs"); gs != nil {
		rec.GroundSpeed = gs
	} else {
		rec.GroundSpeed = floatField(obj, "ground_speed")
	}

	return rec
}

// floatField reads a numeric field that JSON decoding may have produced as
// float64 or, from some aggregators, as a quoted number.
func floatField(obj map[string]interface{}, key string) *float64 {
	switch v := obj[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}
