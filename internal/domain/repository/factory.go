package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Notifications() NotificationRepository
	Addresses() AddressRepository
	Profiles() ProfileRepository
}
