package models

// AssetIcon maps an AssetType to its icon identifier.
// Identifiers use Lucide icon names (https://lucide.dev) for
// compatibility with the React dashboard.
var AssetIcon = map[AssetType]string{
	AssetTypePDV:     "monitor",
	AssetTypeScale:   "scale",
	AssetTypeServer:  "server",
	AssetTypePrinter: "printer",
	AssetTypeSwitch:  "network",
}

// Icon returns the icon identifier for an AssetType.
// Returns "help-circle" for unrecognised types.
func (t AssetType) Icon() string {
	if icon, ok := AssetIcon[t]; ok {
		return icon
	}
	return "help-circle"
}
