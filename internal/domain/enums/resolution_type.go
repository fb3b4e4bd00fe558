package enums

type ResolutionType string

const (
	ResolutionClientFavor      ResolutionType = "client_favor"
	ResolutionProviderFavor    ResolutionType = "provider_favor"
	ResolutionPartialAgreement ResolutionType = "partial_agreement"
)

func (t ResolutionType) Valid() bool {
	switch t {
	case ResolutionClientFavor, ResolutionProviderFavor, ResolutionPartialAgreement:
		return true
	}
	return false
}
