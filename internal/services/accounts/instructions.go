package accounts

import (
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
)

type ataKey struct {
	Wallet solana.PublicKey
	Mint   solana.PublicKey
}

var (
	ataCache   = make(map[ataKey]solana.PublicKey)
	ataCacheMu sync.RWMutex
)

func GetATAAddress(wallet, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	key := ataKey{Wallet: wallet, Mint: mint}

	ataCacheMu.RLock()
	if cached, ok := ataCache[key]; ok {
		ataCacheMu.RUnlock()
		return cached, 0, nil
	}
	ataCacheMu.RUnlock()

	ata, bump, err := solana.FindProgramAddress(
		[][]byte{
			wallet[:],
			common.TokenProgramID[:],
			mint[:],
		},
		common.ATAProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}

	ataCacheMu.Lock()
	ataCache[key] = ata
	ataCacheMu.Unlock()

	return ata, bump, nil
}

// CreateATAInstruction creates an idempotent ATA creation instruction.
func CreateATAInstruction(payer, owner, mint solana.PublicKey) solana.Instruction {
	ata, _, _ := GetATAAddress(owner, mint)
	return &createATAInstruction{
		payer: payer,
		ata:   ata,
		owner: owner,
		mint:  mint,
	}
}

type createATAInstruction struct {
	payer solana.PublicKey
	ata   solana.PublicKey
	owner solana.PublicKey
	mint  solana.PublicKey
}

func (i *createATAInstruction) ProgramID() solana.PublicKey {
	return common.ATAProgramID
}

func (i *createATAInstruction) Accounts() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: i.payer, IsSigner: true, IsWritable: true},
		{PublicKey: i.ata, IsSigner: false, IsWritable: true},
		{PublicKey: i.owner, IsSigner: false, IsWritable: false},
		{PublicKey: i.mint, IsSigner: false, IsWritable: false},
		{PublicKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
	}
}

func (i *createATAInstruction) Data() ([]byte, error) {
	return []byte{1}, nil
}

// CreateAccountInstruction allocates a fresh system account funded with
// lamports and assigned to owner.
func CreateAccountInstruction(payer, newAccount solana.PublicKey, lamports, space uint64, owner solana.PublicKey) solana.Instruction {
	return &createAccountInstruction{
		payer:      payer,
		newAccount: newAccount,
		lamports:   lamports,
		space:      space,
		owner:      owner,
	}
}

type createAccountInstruction struct {
	payer      solana.PublicKey
	newAccount solana.PublicKey
	lamports   uint64
	space      uint64
	owner      solana.PublicKey
}

func (i *createAccountInstruction) ProgramID() solana.PublicKey {
	return common.SystemProgramID
}

func (i *createAccountInstruction) Accounts() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: i.payer, IsSigner: true, IsWritable: true},
		{PublicKey: i.newAccount, IsSigner: true, IsWritable: true},
	}
}

func (i *createAccountInstruction) Data() ([]byte, error) {
	data := make([]byte, 52)
	binary.LittleEndian.PutUint32(data[0:4], 0)
	binary.LittleEndian.PutUint64(data[4:12], i.lamports)
	binary.LittleEndian.PutUint64(data[12:20], i.space)
	copy(data[20:52], i.owner[:])
	return data, nil
}

// InitializeTokenAccountInstruction initializes an allocated account as an
// SPL token account holding mint for owner.
func InitializeTokenAccountInstruction(account, mint, owner solana.PublicKey) solana.Instruction {
	return &initializeTokenAccountInstruction{
		account: account,
		mint:    mint,
		owner:   owner,
	}
}

type initializeTokenAccountInstruction struct {
	account solana.PublicKey
	mint    solana.PublicKey
	owner   solana.PublicKey
}

func (i *initializeTokenAccountInstruction) ProgramID() solana.PublicKey {
	return common.TokenProgramID
}

func (i *initializeTokenAccountInstruction) Accounts() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: i.account, IsSigner: false, IsWritable: true},
		{PublicKey: i.mint, IsSigner: false, IsWritable: false},
		{PublicKey: i.owner, IsSigner: false, IsWritable: false},
		{PublicKey: common.SysvarRentID, IsSigner: false, IsWritable: false},
	}
}

func (i *initializeTokenAccountInstruction) Data() ([]byte, error) {
	return []byte{1}, nil
}

// CloseTokenAccountInstruction closes a token account and sends its lamports
// to destination. Used to unwrap temporary wrapped-SOL accounts.
func CloseTokenAccountInstruction(account, destination, owner solana.PublicKey) solana.Instruction {
	return &closeTokenAccountInstruction{
		account:     account,
		destination: destination,
		owner:       owner,
	}
}

type closeTokenAccountInstruction struct {
	account     solana.PublicKey
	destination solana.PublicKey
	owner       solana.PublicKey
}

func (i *closeTokenAccountInstruction) ProgramID() solana.PublicKey {
	return common.TokenProgramID
}

func (i *closeTokenAccountInstruction) Accounts() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: i.account, IsSigner: false, IsWritable: true},
		{PublicKey: i.destination, IsSigner: false, IsWritable: true},
		{PublicKey: i.owner, IsSigner: true, IsWritable: false},
	}
}

func (i *closeTokenAccountInstruction) Data() ([]byte, error) {
	return []byte{9}, nil
}

// InitOpenOrdersInstruction initializes a freshly allocated open-orders
// account on a serum market.
func InitOpenOrdersInstruction(openOrders, owner, market, dexProgram solana.PublicKey) solana.Instruction {
	return &initOpenOrdersInstruction{
		openOrders: openOrders,
		owner:      owner,
		market:     market,
		dexProgram: dexProgram,
	}
}

type initOpenOrdersInstruction struct {
	openOrders solana.PublicKey
	owner      solana.PublicKey
	market     solana.PublicKey
	dexProgram solana.PublicKey
}

func (i *initOpenOrdersInstruction) ProgramID() solana.PublicKey {
	return i.dexProgram
}

func (i *initOpenOrdersInstruction) Accounts() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: i.openOrders, IsSigner: true, IsWritable: true},
		{PublicKey: i.owner, IsSigner: true, IsWritable: false},
		{PublicKey: i.market, IsSigner: false, IsWritable: false},
		{PublicKey: common.SysvarRentID, IsSigner: false, IsWritable: false},
	}
}

func (i *initOpenOrdersInstruction) Data() ([]byte, error) {
	// serum instruction encoding: version byte then u32 discriminator
	data := make([]byte, 5)
	data[0] = 0
	binary.LittleEndian.PutUint32(data[1:5], 15)
	return data, nil
}
