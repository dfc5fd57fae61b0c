package snapshot

import "vigil/internal/screening"

// builtinEntries are the minimal built-in reference lists used when a source
// snapshot cannot be loaded and fallback is enabled. They are deliberately
// small: enough for the pipeline to keep producing conservative results, not
// a substitute for the refreshed lists. NormalizedName is filled at load time.
var builtinEntries = map[screening.Source][]screening.ListEntry{
	screening.SourceSanctions: {
		{EntryID: "builtin-san-001", Name: "Viktor Anatolyevich Bout", Category: "SDN"},
		{EntryID: "builtin-san-002", Name: "Ocean Glory Shipping Ltd", Category: "SDN"},
		{EntryID: "builtin-san-003", Name: "Ismael Zambada Garcia", Category: "SDNTK"},
	},
	screening.SourceBlockedPersons: {
		{EntryID: "builtin-blk-001", Name: "Raul Flores Hernandez", Category: "blocked"},
		{EntryID: "builtin-blk-002", Name: "Comercializadora Altiplano SA de CV", Category: "blocked"},
	},
	screening.SourcePEP: {
		{EntryID: "builtin-pep-001", Name: "Cesar Horacio Duarte Jaquez", Category: "governor"},
	},
	screening.SourceDeregistered: {
		{EntryID: "builtin-der-001", Name: "Servicios Corporativos Delta SA de CV", LegalID: "SCD101112AB3", Category: "definitive"},
	},
}
