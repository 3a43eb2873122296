package chain

const tradingABI = `[
 {"type":"function","name":"openLongPosition","stateMutability":"nonpayable",
  "inputs":[{"name":"countryCode","type":"bytes32"},{"name":"collateralAmount","type":"uint256"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"openShortPosition","stateMutability":"nonpayable",
  "inputs":[{"name":"countryCode","type":"bytes32"},{"name":"collateralAmount","type":"uint256"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"deposit","stateMutability":"nonpayable",
  "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"withdraw","stateMutability":"nonpayable",
  "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"getCollateralBalance","stateMutability":"view",
  "inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"getUserPositions","stateMutability":"view",
  "inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
 {"type":"function","name":"getPosition","stateMutability":"view",
  "inputs":[{"name":"user","type":"address"},{"name":"positionId","type":"uint256"}],
  "outputs":[{"name":"","type":"tuple","components":[
    {"name":"countryCode","type":"bytes32"},
    {"name":"isLong","type":"bool"},
    {"name":"collateralAmount","type":"uint256"},
    {"name":"positionSize","type":"uint256"},
    {"name":"entryPrice","type":"uint256"},
    {"name":"entryTimestamp","type":"uint256"},
    {"name":"lastFundingTimestamp","type":"uint256"}]}]},
 {"type":"function","name":"getPositionPnL","stateMutability":"view",
  "inputs":[{"name":"user","type":"address"},{"name":"positionId","type":"uint256"}],
  "outputs":[{"name":"pnl","type":"int256"},{"name":"currentPrice","type":"uint256"}]}
]`

const erc20ABI = `[
 {"type":"function","name":"balanceOf","stateMutability":"view",
  "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"allowance","stateMutability":"view",
  "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"approve","stateMutability":"nonpayable",
  "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
  "outputs":[{"name":"","type":"bool"}]}
]`

const registryABI = `[
 {"type":"function","name":"getAllCountries","stateMutability":"view","inputs":[],
  "outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"countryCode","type":"bytes32"},
    {"name":"name","type":"string"},
    {"name":"priceFeed","type":"address"},
    {"name":"isActive","type":"bool"}]}]},
 {"type":"function","name":"getCountryPrice","stateMutability":"view",
  "inputs":[{"name":"countryCode","type":"bytes32"}],
  "outputs":[{"name":"price","type":"uint256"},{"name":"timestamp","type":"uint256"}]}
]`
