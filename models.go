package phonecrawler

import "time"

// Brand is one manufacturer entry from the makers index page. Slug is the
// path identifier of the brand's listing page with the trailing .php removed.
type Brand struct {
	Name        string `json:"name" bson:"name"`
	Slug        string `json:"slug" bson:"slug"`
	DeviceCount int    `json:"device_count" bson:"device_count"`
}

// ListingItem is one device stub from a paginated brand listing. DetailID is
// derived from the detail link (path minus the .php extension) and is the
// primary key everywhere downstream.
type ListingItem struct {
	Name         string `json:"name" bson:"name"`
	DetailID     string `json:"detail_id" bson:"detail_id"`
	DetailURL    string `json:"detail_url" bson:"detail_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
}

// SpecPair is a single key/value row inside a specification category.
type SpecPair struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}

// RawCategory is one titled group of spec pairs exactly as extracted from the
// detail page. Order is extraction order, not alphabetical.
type RawCategory struct {
	Title string     `json:"title" bson:"title"`
	Specs []SpecPair `json:"specs" bson:"specs"`
}

type NetworkSpecs struct {
	Technology *string `json:"technology,omitempty" bson:"technology,omitempty"`
	Bands2G    *string `json:"bands_2g,omitempty" bson:"bands_2g,omitempty"`
	Bands3G    *string `json:"bands_3g,omitempty" bson:"bands_3g,omitempty"`
	Bands4G    *string `json:"bands_4g,omitempty" bson:"bands_4g,omitempty"`
	Bands5G    *string `json:"bands_5g,omitempty" bson:"bands_5g,omitempty"`
	Speed      *string `json:"speed,omitempty" bson:"speed,omitempty"`
}

type LaunchSpecs struct {
	Announced *string `json:"announced,omitempty" bson:"announced,omitempty"`
	Status    *string `json:"status,omitempty" bson:"status,omitempty"`
}

type BodySpecs struct {
	Dimensions *string `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight     *string `json:"weight,omitempty" bson:"weight,omitempty"`
	Build      *string `json:"build,omitempty" bson:"build,omitempty"`
	Sim        *string `json:"sim,omitempty" bson:"sim,omitempty"`
}

type DisplaySpecs struct {
	DisplayType *string `json:"display_type,omitempty" bson:"display_type,omitempty"`
	Size        *string `json:"size,omitempty" bson:"size,omitempty"`
	Resolution  *string `json:"resolution,omitempty" bson:"resolution,omitempty"`
	Protection  *string `json:"protection,omitempty" bson:"protection,omitempty"`
}

type PlatformSpecs struct {
	OS      *string `json:"os,omitempty" bson:"os,omitempty"`
	Chipset *string `json:"chipset,omitempty" bson:"chipset,omitempty"`
	CPU     *string `json:"cpu,omitempty" bson:"cpu,omitempty"`
	GPU     *string `json:"gpu,omitempty" bson:"gpu,omitempty"`
}

type MemorySpecs struct {
	CardSlot *string `json:"card_slot,omitempty" bson:"card_slot,omitempty"`
	Internal *string `json:"internal,omitempty" bson:"internal,omitempty"`
}

// CameraSpecs covers both the main and selfie camera categories. Modules is
// taken from whichever of the single/dual/triple/quad/penta keys is present,
// mirroring the source site's labeling.
type CameraSpecs struct {
	Modules  *string `json:"modules,omitempty" bson:"modules,omitempty"`
	Features *string `json:"features,omitempty" bson:"features,omitempty"`
	Video    *string `json:"video,omitempty" bson:"video,omitempty"`
}

type SoundSpecs struct {
	Loudspeaker *string `json:"loudspeaker,omitempty" bson:"loudspeaker,omitempty"`
	Jack35mm    *string `json:"jack_3_5mm,omitempty" bson:"jack_3_5mm,omitempty"`
}

type CommsSpecs struct {
	WLAN        *string `json:"wlan,omitempty" bson:"wlan,omitempty"`
	Bluetooth   *string `json:"bluetooth,omitempty" bson:"bluetooth,omitempty"`
	Positioning *string `json:"positioning,omitempty" bson:"positioning,omitempty"`
	NFC         *string `json:"nfc,omitempty" bson:"nfc,omitempty"`
	Radio       *string `json:"radio,omitempty" bson:"radio,omitempty"`
	USB         *string `json:"usb,omitempty" bson:"usb,omitempty"`
}

type FeaturesSpecs struct {
	Sensors *string `json:"sensors,omitempty" bson:"sensors,omitempty"`
}

type BatterySpecs struct {
	BatteryType *string `json:"battery_type,omitempty" bson:"battery_type,omitempty"`
	Charging    *string `json:"charging,omitempty" bson:"charging,omitempty"`
}

type MiscSpecs struct {
	Colors *string `json:"colors,omitempty" bson:"colors,omitempty"`
	Models *string `json:"models,omitempty" bson:"models,omitempty"`
	Sar    *string `json:"sar,omitempty" bson:"sar,omitempty"`
	SarEU  *string `json:"sar_eu,omitempty" bson:"sar_eu,omitempty"`
	Price  *string `json:"price,omitempty" bson:"price,omitempty"`
}

// NormalizedSpec is the fixed-schema decomposition of the raw category list.
// A nil section means the category was absent from the source page.
type NormalizedSpec struct {
	Network      *NetworkSpecs  `json:"network,omitempty" bson:"network,omitempty"`
	Launch       *LaunchSpecs   `json:"launch,omitempty" bson:"launch,omitempty"`
	Body         *BodySpecs     `json:"body,omitempty" bson:"body,omitempty"`
	Display      *DisplaySpecs  `json:"display,omitempty" bson:"display,omitempty"`
	Platform     *PlatformSpecs `json:"platform,omitempty" bson:"platform,omitempty"`
	Memory       *MemorySpecs   `json:"memory,omitempty" bson:"memory,omitempty"`
	MainCamera   *CameraSpecs   `json:"main_camera,omitempty" bson:"main_camera,omitempty"`
	SelfieCamera *CameraSpecs   `json:"selfie_camera,omitempty" bson:"selfie_camera,omitempty"`
	Sound        *SoundSpecs    `json:"sound,omitempty" bson:"sound,omitempty"`
	Comms        *CommsSpecs    `json:"comms,omitempty" bson:"comms,omitempty"`
	Features     *FeaturesSpecs `json:"features,omitempty" bson:"features,omitempty"`
	Battery      *BatterySpecs  `json:"battery,omitempty" bson:"battery,omitempty"`
	Misc         *MiscSpecs     `json:"misc,omitempty" bson:"misc,omitempty"`
}

// PhoneRecord is the persisted document, upserted by DetailID. SpecsRaw keeps
// the untouched category list so nothing the site publishes is ever lost.
type PhoneRecord struct {
	DetailID     string `json:"detail_id" bson:"detail_id"`
	Name         string `json:"name" bson:"name"`
	Brand        string `json:"brand" bson:"brand"`
	URL          string `json:"url" bson:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	Source       string `json:"source" bson:"source"`

	NormalizedSpec `bson:",inline"`

	SpecsRaw []RawCategory `json:"specifications_raw" bson:"specifications_raw"`

	FirstSeenAt   time.Time `json:"first_seen_at" bson:"first_seen_at"`
	LastUpdatedAt time.Time `json:"last_updated_at" bson:"last_updated_at"`
	Version       int32     `json:"version" bson:"version"`
}
