package market

type Role string

const (
	Buyer  Role = "buyer"
	Seller Role = "seller"
)

// User is the marketplace identity picked at login. No credentials are checked.
type User struct {
	ID   string
	Name string
	Role Role
}

// Login returns the demo identity for role.
func Login(role Role) User {
	if role == Seller {
		return User{ID: "seller123", Name: "Organic Farms Co.", Role: Seller}
	}
	return User{ID: "buyer123", Name: "FreshMart Buyer", Role: Buyer}
}

func (u User) IsSeller() bool {
	return u.Role == Seller
}

// Owns reports whether p was posted by u.
func (u User) Owns(p Product) bool {
	return u.IsSeller() && p.SellerID == u.ID
}
