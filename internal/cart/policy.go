package cart

import "github.com/polkiloo/petshop/internal/domain/model"

// Resolution is the outcome of reconciling a guest cart with the remote
// cart at sign-in. Lines become the local cart as-is; Upload lines are
// inserted remotely first and appended with their remote ids.
type Resolution struct {
	Lines  []model.CartLine
	Upload []model.CartLine
}

// SignInPolicy decides what happens to guest lines when a visitor signs in.
type SignInPolicy interface {
	Resolve(local, remote []model.CartLine) Resolution
}

// OverwriteWithRemote discards guest lines and adopts the remote cart.
type OverwriteWithRemote struct{}

// Resolve implements SignInPolicy.
func (OverwriteWithRemote) Resolve(_, remote []model.CartLine) Resolution {
	return Resolution{Lines: remote}
}

// MergeGuestIntoRemote keeps the remote cart and uploads guest lines for
// products the remote cart does not contain. Remote quantities win for
// products present in both. Lines mirrored from an account cart, left in
// place by a sign-out, are never uploaded.
type MergeGuestIntoRemote struct{}

// Resolve implements SignInPolicy.
func (MergeGuestIntoRemote) Resolve(local, remote []model.CartLine) Resolution {
	known := make(map[int64]struct{}, len(remote))
	for _, l := range remote {
		known[l.ProductID] = struct{}{}
	}
	var upload []model.CartLine
	for _, l := range local {
		if l.OwnerID != 0 {
			continue
		}
		if _, ok := known[l.ProductID]; ok {
			continue
		}
		known[l.ProductID] = struct{}{}
		pending := l
		pending.ID = 0
		upload = append(upload, pending)
	}
	return Resolution{Lines: remote, Upload: upload}
}

// PolicyByName maps a configuration value to a policy.
func PolicyByName(name string) SignInPolicy {
	switch name {
	case "merge":
		return MergeGuestIntoRemote{}
	default:
		return OverwriteWithRemote{}
	}
}
