package phonecrawler

import "strings"

// Normalize projects the raw category list onto the fixed semantic schema.
// Category titles and keys match case-insensitively against a fixed
// vocabulary; a category absent from the input leaves its section nil, and a
// missing key leaves only that field nil. Unrecognized categories are not
// dropped here: the caller keeps the full raw list on the record.
// Normalization never fails.
func Normalize(categories []RawCategory) NormalizedSpec {
	byTitle := make(map[string]map[string]string)
	for _, category := range categories {
		title := strings.ToLower(strings.TrimSpace(category.Title))
		pairs, ok := byTitle[title]
		if !ok {
			pairs = make(map[string]string)
			byTitle[title] = pairs
		}
		// Last occurrence of a duplicate key wins.
		for _, pair := range category.Specs {
			pairs[strings.ToLower(strings.TrimSpace(pair.Key))] = pair.Value
		}
	}

	var spec NormalizedSpec

	if m, ok := byTitle["network"]; ok {
		spec.Network = &NetworkSpecs{
			Technology: field(m, "technology"),
			Bands2G:    field(m, "2g bands"),
			Bands3G:    field(m, "3g bands"),
			Bands4G:    field(m, "4g bands"),
			Bands5G:    field(m, "5g bands"),
			Speed:      field(m, "speed"),
		}
	}
	if m, ok := byTitle["launch"]; ok {
		spec.Launch = &LaunchSpecs{
			Announced: field(m, "announced"),
			Status:    field(m, "status"),
		}
	}
	if m, ok := byTitle["body"]; ok {
		spec.Body = &BodySpecs{
			Dimensions: field(m, "dimensions"),
			Weight:     field(m, "weight"),
			Build:      field(m, "build"),
			Sim:        field(m, "sim"),
		}
	}
	if m, ok := byTitle["display"]; ok {
		spec.Display = &DisplaySpecs{
			DisplayType: field(m, "type"),
			Size:        field(m, "size"),
			Resolution:  field(m, "resolution"),
			Protection:  field(m, "protection"),
		}
	}
	if m, ok := byTitle["platform"]; ok {
		spec.Platform = &PlatformSpecs{
			OS:      field(m, "os"),
			Chipset: field(m, "chipset"),
			CPU:     field(m, "cpu"),
			GPU:     field(m, "gpu"),
		}
	}
	if m, ok := byTitle["memory"]; ok {
		spec.Memory = &MemorySpecs{
			CardSlot: field(m, "card slot"),
			Internal: field(m, "internal"),
		}
	}
	if m, ok := byTitle["main camera"]; ok {
		// Devices with more modules get richer key names upstream, so the
		// first present key in priority order is the module description.
		spec.MainCamera = &CameraSpecs{
			Modules:  firstField(m, "single", "dual", "triple", "quad", "penta"),
			Features: field(m, "features"),
			Video:    field(m, "video"),
		}
	}
	if m, ok := byTitle["selfie camera"]; ok {
		spec.SelfieCamera = &CameraSpecs{
			Modules:  firstField(m, "single", "dual"),
			Features: field(m, "features"),
			Video:    field(m, "video"),
		}
	}
	if m, ok := byTitle["sound"]; ok {
		spec.Sound = &SoundSpecs{
			Loudspeaker: field(m, "loudspeaker"),
			Jack35mm:    field(m, "3.5mm jack"),
		}
	}
	if m, ok := byTitle["comms"]; ok {
		spec.Comms = &CommsSpecs{
			WLAN:        field(m, "wlan"),
			Bluetooth:   field(m, "bluetooth"),
			Positioning: field(m, "positioning"),
			NFC:         field(m, "nfc"),
			Radio:       field(m, "radio"),
			USB:         field(m, "usb"),
		}
	}
	if m, ok := byTitle["features"]; ok {
		spec.Features = &FeaturesSpecs{
			Sensors: field(m, "sensors"),
		}
	}
	if m, ok := byTitle["battery"]; ok {
		spec.Battery = &BatterySpecs{
			BatteryType: field(m, "type"),
			Charging:    field(m, "charging"),
		}
	}
	if m, ok := byTitle["misc"]; ok {
		spec.Misc = &MiscSpecs{
			Colors: field(m, "colors"),
			Models: field(m, "models"),
			Sar:    field(m, "sar"),
			SarEU:  field(m, "sar eu"),
			Price:  field(m, "price"),
		}
	}

	return spec
}

func field(pairs map[string]string, key string) *string {
	if value, ok := pairs[key]; ok {
		return &value
	}
	return nil
}

func firstField(pairs map[string]string, keys ...string) *string {
	for _, key := range keys {
		if value := field(pairs, key); value != nil {
			return value
		}
	}
	return nil
}
